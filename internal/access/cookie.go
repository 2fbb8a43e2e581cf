// ABOUTME: Session cookie codec for the access gateway
// ABOUTME: Pure cookie-header parsing plus Set-Cookie minting for tier sessions

package access

import (
	"net/http"
	"strings"
)

// ParseCookieHeader parses a semicolon-delimited Cookie header value into a
// name-to-value map. The first occurrence of a name wins. Malformed pairs
// (no "=") are skipped. Kept free of net/http so it can be tested without
// request framing.
func ParseCookieHeader(header string) map[string]string {
	cookies := make(map[string]string)
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		if !ok || name == "" {
			continue
		}
		if _, exists := cookies[name]; exists {
			continue
		}
		cookies[name] = value
	}
	return cookies
}

// ReadSession returns the session token for a tier from a raw Cookie
// header, or "" when the cookie is absent.
func ReadSession(cookieHeader string, tier Tier) string {
	return ParseCookieHeader(cookieHeader)[tier.CookieName]
}

// WriteSession appends a Set-Cookie header for the tier's session. The
// cookie is scoped to the whole site and kept away from scripts and
// cross-site requests. Appends rather than replaces, so cookies minted
// earlier in the same response survive.
func WriteSession(w http.ResponseWriter, tier Tier, token string, maxAgeSeconds int) {
	http.SetCookie(w, &http.Cookie{
		Name:     tier.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAgeSeconds,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}
