// Package auth verifies identity-provider tokens and manages the session
// cookies derived from them.
package auth

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/team5526/pitcrew/internal/errors"
	"github.com/team5526/pitcrew/internal/logger"
)

// Claims are the verified fields of an identity token
type Claims struct {
	UID         string
	Email       string
	DisplayName string
	ExpiresAt   time.Time
}

// tokenClaims is the raw JWT claim set from the identity provider
type tokenClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Verifier validates RS256 identity tokens against the provider's rotating
// certificate set
type Verifier struct {
	projectID string
	keys      KeyCache
	log       logger.Logger
}

// NewVerifier creates a token verifier for one provider project
func NewVerifier(projectID string, keys KeyCache, log logger.Logger) *Verifier {
	return &Verifier{projectID: projectID, keys: keys, log: log}
}

// Verify parses and validates an identity token, returning its claims.
// Checks signature, expiry, audience (the project id) and issuer.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("token has no kid header")
		}
		return v.publicKey(ctx, kid)
	},
		jwt.WithAudience(v.projectID),
		jwt.WithIssuer("https://securetoken.google.com/"+v.projectID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrAuth, "invalid token")
	}
	if !token.Valid {
		return nil, errors.Auth("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.Auth("token has no subject")
	}

	out := &Claims{
		UID:         claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// publicKey resolves a kid to an RSA public key via the key cache. An unknown
// kid invalidates the cache once, in case the provider rotated keys.
func (v *Verifier) publicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	keys, err := v.keys.Get(ctx)
	if err != nil {
		return nil, err
	}
	certPEM, ok := keys[kid]
	if !ok {
		if invalidator, can := v.keys.(interface{ Invalidate() }); can {
			invalidator.Invalidate()
			if keys, err = v.keys.Get(ctx); err == nil {
				certPEM, ok = keys[kid]
			}
		}
		if !ok {
			return nil, fmt.Errorf("no signing key for kid %s", kid)
		}
	}
	return parseCertPublicKey(certPEM)
}

// parseCertPublicKey extracts the RSA public key from a PEM x509 certificate
func parseCertPublicKey(certPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(certPEM))
	if block == nil {
		return nil, fmt.Errorf("signing key is not PEM encoded")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse signing certificate: %w", err)
	}
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("signing certificate does not carry an RSA key")
	}
	return pub, nil
}
