package auth

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/team5526/pitcrew/internal/logger"
)

type contextKey int

const claimsKey contextKey = 0

// ClaimsFromContext returns the verified claims attached by the middleware
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

// WithClaims attaches verified claims to a context. Exported for handler tests.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// RefreshMargin is how close to expiry a token gets silently renewed
const RefreshMargin = 5 * time.Minute

// Middleware guards routes with token verification and silent refresh
type Middleware struct {
	verifier  *Verifier
	refresher Refresher
	cookies   *CookieWriter
	log       logger.Logger

	// Margin overrides RefreshMargin when non-zero
	Margin time.Duration
}

// NewMiddleware creates the auth middleware
func NewMiddleware(verifier *Verifier, refresher Refresher, cookies *CookieWriter, log logger.Logger) *Middleware {
	return &Middleware{verifier: verifier, refresher: refresher, cookies: cookies, log: log}
}

// RequireAuth guards HTML pages: unauthenticated requests are redirected to
// the login page with a callback to the original URL.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := m.authenticate(w, r)
		if claims == nil {
			callback := url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, "/login?callbackUrl="+callback, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// RequireAuthAPI guards API endpoints: unauthenticated requests get 401 JSON
func (m *Middleware) RequireAuthAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := m.authenticate(w, r)
		if claims == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"code":"UNAUTHORIZED","error":"Unauthorized - please log in"}`))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// authenticate resolves the request to verified claims, renewing the session
// from the refresh cookie when the id token is missing, expired or about to
// expire. Returns nil when no valid session can be established.
func (m *Middleware) authenticate(w http.ResponseWriter, r *http.Request) *Claims {
	var claims *Claims
	if cookie, err := r.Cookie(AuthCookieName); err == nil && cookie.Value != "" {
		verified, err := m.verifier.Verify(r.Context(), cookie.Value)
		if err == nil {
			claims = verified
		} else {
			m.log.Debug("auth cookie rejected", "error", err)
		}
	}

	margin := m.Margin
	if margin == 0 {
		margin = RefreshMargin
	}

	// Near-expiry tokens are renewed while the request still succeeds
	if claims != nil && time.Until(claims.ExpiresAt) > margin {
		return claims
	}

	renewed := m.tryRefresh(w, r)
	if renewed != nil {
		return renewed
	}
	return claims
}

func (m *Middleware) tryRefresh(w http.ResponseWriter, r *http.Request) *Claims {
	if m.refresher == nil {
		return nil
	}
	cookie, err := r.Cookie(RefreshCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	result, err := m.refresher.Refresh(r.Context(), cookie.Value)
	if err != nil {
		m.log.Debug("session refresh failed", "error", err)
		return nil
	}

	claims, err := m.verifier.Verify(r.Context(), result.IDToken)
	if err != nil {
		m.log.Warn("refreshed token failed verification", "error", err)
		return nil
	}

	m.cookies.SetSession(w, result.IDToken, result.RefreshToken)
	m.log.Debug("session refreshed", "uid", claims.UID)
	return claims
}
