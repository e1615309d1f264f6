package handler

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shivakharbanda/journalclub/internal/middleware"
	"github.com/shivakharbanda/journalclub/internal/service"
)

// Handlers bundles everything RegisterRoutes needs.
type Handlers struct {
	Auth       *AuthHandler
	Episode    *EpisodeHandler
	Engagement *EngagementHandler
	Comment    *CommentHandler
	Topic      *TopicHandler
	Health     *HealthHandler
}

const (
	engagementWriteLimit  = 60
	engagementWritePeriod = time.Minute
)

// RegisterRoutes mounts the API on the mux. Identity middleware runs on every
// API route: optional auth resolves a token if present, and the guest cookie
// middleware guarantees a device token for everyone else.
func RegisterRoutes(mux *http.ServeMux, h Handlers, authService service.AuthService, guestCookieMaxAge time.Duration, cookieSecure bool) {
	optionalAuth := middleware.OptionalAuthMiddleware(authService)
	requireAuth := middleware.AuthMiddleware(authService)
	guestCookie := middleware.GuestCookieMiddleware(guestCookieMaxAge, cookieSecure)
	throttle := middleware.ThrottleMiddleware(engagementWriteLimit, engagementWritePeriod)

	public := func(fn http.HandlerFunc) http.Handler {
		return guestCookie(optionalAuth(fn))
	}
	authed := func(fn http.HandlerFunc) http.Handler {
		return requireAuth(fn)
	}
	admin := func(fn http.HandlerFunc) http.Handler {
		return requireAuth(middleware.AdminMiddleware(fn))
	}
	engagementWrite := func(fn http.HandlerFunc) http.Handler {
		return guestCookie(optionalAuth(throttle(fn)))
	}

	// Auth
	mux.Handle("POST /api/auth/register", public(h.Auth.Register))
	mux.Handle("POST /api/auth/login", public(h.Auth.Login))
	mux.Handle("POST /api/auth/logout", authed(h.Auth.Logout))
	mux.Handle("GET /api/auth/me", authed(h.Auth.Me))

	// Episodes
	mux.Handle("GET /api/episodes", public(h.Episode.List))
	mux.Handle("GET /api/episodes/{slug}", public(h.Episode.Get))
	mux.Handle("POST /api/episodes", admin(h.Episode.Create))
	mux.Handle("PUT /api/episodes/{slug}", admin(h.Episode.Update))
	mux.Handle("DELETE /api/episodes/{slug}", admin(h.Episode.Delete))

	// Engagement
	mux.Handle("PUT /api/episodes/{id}/progress", engagementWrite(h.Engagement.RecordProgress))
	mux.Handle("GET /api/episodes/{id}/progress", public(h.Engagement.GetProgress))
	mux.Handle("GET /api/me/continue-listening", public(h.Engagement.ContinueListening))
	mux.Handle("POST /api/episodes/{id}/reaction", engagementWrite(h.Engagement.SetReaction))
	mux.Handle("DELETE /api/episodes/{id}/reaction", engagementWrite(h.Engagement.ClearReaction))
	mux.Handle("POST /api/saved", engagementWrite(h.Engagement.ToggleSave))
	mux.Handle("GET /api/saved", public(h.Engagement.ListSaved))

	// Comments
	mux.Handle("POST /api/comments", authed(h.Comment.Create))
	mux.Handle("GET /api/comments", public(h.Comment.List))
	mux.Handle("GET /api/comments/{id}/thread", public(h.Comment.Thread))

	// Topics
	mux.Handle("GET /api/topics", public(h.Topic.List))
	mux.Handle("GET /api/topics/{slug}", public(h.Topic.Get))
	mux.Handle("POST /api/topics", admin(h.Topic.Create))
	mux.Handle("PUT /api/topics/{slug}", admin(h.Topic.Update))
	mux.Handle("DELETE /api/topics/{slug}", admin(h.Topic.Delete))

	// Operational
	mux.HandleFunc("GET /ping", h.Health.Ping)
	mux.HandleFunc("GET /healthz", h.Health.Healthz)
	mux.Handle("GET /metrics", promhttp.Handler())
}
