package middleware

import (
	"net/http"
	"time"

	"github.com/shivakharbanda/journalclub/pkg/helpers"
)

// GuestCookieName is the cookie carrying the anonymous device token.
const GuestCookieName = "guest_id"

// GuestCookieMiddleware ensures every request carries a guest device token.
// A missing cookie is minted on the spot so the very first engagement write
// from a new browser can be attributed. The guest identity row itself is only
// created when the token is first used for a write.
func GuestCookieMiddleware(maxAge time.Duration, secure bool) func(http.Handler) http.Handler {
	ids := helpers.NewIDGenerator()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if cookie, err := r.Cookie(GuestCookieName); err == nil && cookie.Value != "" {
				token = cookie.Value
			}

			if token == "" {
				token = ids.GenerateDeviceToken()
				http.SetCookie(w, &http.Cookie{
					Name:     GuestCookieName,
					Value:    token,
					Path:     "/",
					MaxAge:   int(maxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(ContextWithDeviceToken(r.Context(), token)))
		})
	}
}
