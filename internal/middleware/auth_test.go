package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivakharbanda/journalclub/internal/models"
)

type mockAuthService struct {
	validateFunc func(ctx context.Context, token string) (*models.User, error)
}

func (m *mockAuthService) Register(ctx context.Context, username, email, password, deviceToken string) (*models.User, string, error) {
	return nil, "", errors.New("not implemented")
}

func (m *mockAuthService) Login(ctx context.Context, username, password, deviceToken string) (*models.User, string, error) {
	return nil, "", errors.New("not implemented")
}

func (m *mockAuthService) Logout(ctx context.Context, userID uint64) error {
	return errors.New("not implemented")
}

func (m *mockAuthService) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	if m.validateFunc != nil {
		return m.validateFunc(ctx, token)
	}
	return nil, nil
}

func TestAuthMiddleware(t *testing.T) {
	authService := &mockAuthService{
		validateFunc: func(ctx context.Context, token string) (*models.User, error) {
			if token == "9|valid" {
				return &models.User{ID: 42, Username: "alice"}, nil
			}
			return nil, nil
		},
	}

	var seenUser *models.User
	handler := AuthMiddleware(authService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser = UserFromContext(r.Context())
	}))

	t.Run("bearer token puts the user on the context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer 9|valid")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seenUser)
		assert.Equal(t, uint64(42), seenUser.ID)
	})

	t.Run("cookie works as a header fallback", func(t *testing.T) {
		seenUser = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: "9|valid"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seenUser)
	})

	t.Run("missing token is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer bogus")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestOptionalAuthMiddleware(t *testing.T) {
	authService := &mockAuthService{
		validateFunc: func(ctx context.Context, token string) (*models.User, error) {
			if token == "9|valid" {
				return &models.User{ID: 42}, nil
			}
			return nil, nil
		},
	}

	var seenUser *models.User
	handler := OptionalAuthMiddleware(authService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser = UserFromContext(r.Context())
	}))

	t.Run("anonymous request passes without a user", func(t *testing.T) {
		seenUser = nil
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, seenUser)
	})

	t.Run("stale token never rejects", func(t *testing.T) {
		seenUser = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer bogus")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, seenUser)
	})

	t.Run("valid token attaches the user", func(t *testing.T) {
		seenUser = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer 9|valid")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.NotNil(t, seenUser)
	})
}

func TestAdminMiddleware(t *testing.T) {
	handler := AdminMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(ContextWithUser(req.Context(), &models.User{ID: 1, IsAdmin: true}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("regular user is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(ContextWithUser(req.Context(), &models.User{ID: 2}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("anonymous is forbidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
