package middleware

import (
	"net/http"
	"strings"

	"github.com/shivakharbanda/journalclub/internal/service"
)

// TokenCookieName is the cookie fallback for the Authorization header.
const TokenCookieName = "token"

// AuthMiddleware creates an HTTP middleware that validates authentication
// tokens and adds the user to the request context. Requests without a valid
// token are rejected.
func AuthMiddleware(authService service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractTokenFromHeader(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "Unauthenticated")
				return
			}

			user, err := authService.ValidateToken(r.Context(), token)
			if err != nil || user == nil {
				writeError(w, http.StatusUnauthorized, "Unauthenticated")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
		})
	}
}

// OptionalAuthMiddleware validates the token if one is present but never
// rejects. Routes behind it serve both users and guests; the guest cookie
// middleware supplies the fallback identity.
func OptionalAuthMiddleware(authService service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractTokenFromHeader(r)
			if token != "" {
				user, err := authService.ValidateToken(r.Context(), token)
				if err == nil && user != nil {
					r = r.WithContext(ContextWithUser(r.Context(), user))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AdminMiddleware requires an authenticated admin. Apply after AuthMiddleware.
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		if user == nil || !user.IsAdmin {
			writeError(w, http.StatusForbidden, "Forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractTokenFromHeader extracts Bearer token from Authorization header
func extractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		// Try cookie as fallback
		cookie, err := r.Cookie(TokenCookieName)
		if err == nil && cookie != nil {
			return cookie.Value
		}
		return ""
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		// If no Bearer prefix, assume the whole header is the token
		return authHeader
	}

	return strings.TrimPrefix(authHeader, bearerPrefix)
}

// writeError writes an error response in JSON format
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
