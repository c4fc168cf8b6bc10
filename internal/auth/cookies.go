package auth

import (
	"net/http"
	"time"
)

// Session cookie names
const (
	AuthCookieName    = "auth_token"
	RefreshCookieName = "refresh_token"
)

// Cookie lifetimes. The auth cookie matches the id token's hour of validity;
// the refresh cookie outlives a competition weekend.
const (
	AuthCookieMaxAge    = time.Hour
	RefreshCookieMaxAge = 7 * 24 * time.Hour
)

// CookieWriter writes and clears the session cookie pair
type CookieWriter struct {
	Domain string
	Secure bool
}

// SetSession writes the auth and refresh cookies
func (c *CookieWriter) SetSession(w http.ResponseWriter, idToken, refreshToken string) {
	http.SetCookie(w, c.cookie(AuthCookieName, idToken, AuthCookieMaxAge))
	if refreshToken != "" {
		http.SetCookie(w, c.cookie(RefreshCookieName, refreshToken, RefreshCookieMaxAge))
	}
}

// Clear expires both session cookies
func (c *CookieWriter) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(AuthCookieName, "", -time.Second))
	http.SetCookie(w, c.cookie(RefreshCookieName, "", -time.Second))
}

func (c *CookieWriter) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
