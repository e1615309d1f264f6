// Package handler exposes the HTTP API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/shivakharbanda/journalclub/internal/middleware"
	"github.com/shivakharbanda/journalclub/internal/models"
	"github.com/shivakharbanda/journalclub/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps service sentinel errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEpisodeNotFound),
		errors.Is(err, service.ErrTopicNotFound),
		errors.Is(err, service.ErrCommentNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidProgress),
		errors.Is(err, service.ErrInvalidAction),
		errors.Is(err, service.ErrInvalidTarget),
		errors.Is(err, service.ErrEmptyComment),
		errors.Is(err, service.ErrParentMismatch):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUserAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrMissingActor):
		writeError(w, http.StatusUnauthorized, "no identity on request")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func pathID(r *http.Request, name string) (uint64, error) {
	return strconv.ParseUint(r.PathValue(name), 10, 64)
}

func queryInt(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// requestIdentity pulls the authenticated user and guest device token that the
// middleware attached to the context.
func requestIdentity(r *http.Request) (*models.User, string) {
	return middleware.UserFromContext(r.Context()), middleware.DeviceTokenFromContext(r.Context())
}
