package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shivakharbanda/journalclub/internal/middleware"
	"github.com/shivakharbanda/journalclub/internal/models"
	"github.com/shivakharbanda/journalclub/internal/service"
	"github.com/shivakharbanda/journalclub/pkg/helpers"
)

type AuthHandler struct {
	authService   service.AuthService
	validator     *helpers.CustomValidator
	tokenLifetime time.Duration
	cookieSecure  bool
}

func NewAuthHandler(authService service.AuthService, validator *helpers.CustomValidator, tokenLifetime time.Duration, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		validator:     validator,
		tokenLifetime: tokenLifetime,
		cookieSecure:  cookieSecure,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required,min=3,max=64"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, deviceToken := requestIdentity(r)
	user, token, err := h.authService.Register(r.Context(), req.Username, req.Email, req.Password, deviceToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.setTokenCookie(w, token)
	writeJSON(w, http.StatusCreated, authResponse(user, token))
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, deviceToken := requestIdentity(r)
	user, token, err := h.authService.Login(r.Context(), req.Username, req.Password, deviceToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.setTokenCookie(w, token)
	writeJSON(w, http.StatusOK, authResponse(user, token))
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, _ := requestIdentity(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthenticated")
		return
	}

	if err := h.authService.Logout(r.Context(), user.ID); err != nil {
		writeServiceError(w, err)
		return
	}

	h.clearTokenCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, _ := requestIdentity(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthenticated")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"is_admin": user.IsAdmin,
	})
}

func authResponse(user *models.User, token string) map[string]interface{} {
	return map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	}
}

func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokenLifetime.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
