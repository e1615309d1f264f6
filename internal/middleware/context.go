// Package middleware provides HTTP middleware for identity, CORS and
// rate limiting.
package middleware

import (
	"context"

	"github.com/shivakharbanda/journalclub/internal/models"
)

type userContextKey struct{}
type deviceTokenContextKey struct{}

// ContextWithUser attaches the authenticated user to the request context.
func ContextWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext returns the authenticated user, or nil for guests.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey{}).(*models.User)
	return user
}

// ContextWithDeviceToken attaches the guest device token to the context.
func ContextWithDeviceToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, deviceTokenContextKey{}, token)
}

// DeviceTokenFromContext returns the guest device token, or "" when the
// request carried no guest cookie.
func DeviceTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(deviceTokenContextKey{}).(string)
	return token
}
