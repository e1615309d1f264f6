package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shivakharbanda/journalclub/internal/models"
	"github.com/shivakharbanda/journalclub/internal/service"
	"github.com/shivakharbanda/journalclub/pkg/helpers"
)

type EngagementHandler struct {
	engagementService service.EngagementService
	actorService      service.ActorService
	validator         *helpers.CustomValidator
}

func NewEngagementHandler(engagementService service.EngagementService, actorService service.ActorService, validator *helpers.CustomValidator) *EngagementHandler {
	return &EngagementHandler{
		engagementService: engagementService,
		actorService:      actorService,
		validator:         validator,
	}
}

// writeActor resolves the acting identity for a write, creating the guest
// identity on first contact.
func (h *EngagementHandler) writeActor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	user, deviceToken := requestIdentity(r)
	actor, err := h.actorService.Resolve(r.Context(), user, deviceToken)
	if err != nil {
		writeServiceError(w, err)
		return models.Actor{}, false
	}
	return actor, true
}

// readActor resolves the acting identity for a read without minting guest
// rows. ok is false when the request has no usable identity.
func (h *EngagementHandler) readActor(r *http.Request) (models.Actor, bool) {
	user, deviceToken := requestIdentity(r)
	actor, err := h.actorService.ResolveExisting(r.Context(), user, deviceToken)
	if err != nil {
		return models.Actor{}, false
	}
	return actor, true
}

// RecordProgress handles PUT /api/episodes/{id}/progress
func (h *EngagementHandler) RecordProgress(w http.ResponseWriter, r *http.Request) {
	episodeID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid episode id")
		return
	}

	var req struct {
		PositionSeconds int64 `json:"position_seconds" validate:"min=0"`
		DurationSeconds int64 `json:"duration_seconds" validate:"min=0"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	actor, ok := h.writeActor(w, r)
	if !ok {
		return
	}

	if err := h.engagementService.RecordProgress(r.Context(), actor, episodeID, req.PositionSeconds, req.DurationSeconds); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "progress saved"})
}

// GetProgress handles GET /api/episodes/{id}/progress
func (h *EngagementHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	episodeID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid episode id")
		return
	}

	actor, ok := h.readActor(r)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{"progress": nil})
		return
	}

	progress, err := h.engagementService.GetProgress(r.Context(), actor, episodeID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if progress == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"progress": nil})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"progress": map[string]interface{}{
			"position_seconds": progress.PositionSeconds,
			"duration_seconds": progress.DurationSeconds,
			"completed":        progress.Completed,
			"updated_at":       progress.UpdatedAt.Format(time.RFC3339),
		},
	})
}

// ContinueListening handles GET /api/me/continue-listening
func (h *EngagementHandler) ContinueListening(w http.ResponseWriter, r *http.Request) {
	items := []map[string]interface{}{}

	actor, ok := h.readActor(r)
	if ok {
		list, err := h.engagementService.ContinueListening(r.Context(), actor, queryInt(r, "limit", 0))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		for _, item := range list {
			items = append(items, map[string]interface{}{
				"episode":          episodeJSON(&item.Episode),
				"position_seconds": item.PositionSeconds,
				"duration_seconds": item.DurationSeconds,
				"updated_at":       item.UpdatedAt.Format(time.RFC3339),
			})
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// SetReaction handles POST /api/episodes/{id}/reaction
func (h *EngagementHandler) SetReaction(w http.ResponseWriter, r *http.Request) {
	episodeID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid episode id")
		return
	}

	var req struct {
		Action string `json:"action" validate:"required,reaction_action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	actor, ok := h.writeActor(w, r)
	if !ok {
		return
	}

	if err := h.engagementService.SetReaction(r.Context(), actor, episodeID, models.ReactionAction(req.Action)); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "reaction saved"})
}

// ClearReaction handles DELETE /api/episodes/{id}/reaction
func (h *EngagementHandler) ClearReaction(w http.ResponseWriter, r *http.Request) {
	episodeID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid episode id")
		return
	}

	actor, ok := h.writeActor(w, r)
	if !ok {
		return
	}

	if err := h.engagementService.ClearReaction(r.Context(), actor, episodeID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "reaction cleared"})
}

// ToggleSave handles POST /api/saved
func (h *EngagementHandler) ToggleSave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TargetType string `json:"target_type" validate:"required,savable_type"`
		TargetID   uint64 `json:"target_id" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	actor, ok := h.writeActor(w, r)
	if !ok {
		return
	}

	saved, err := h.engagementService.ToggleSave(r.Context(), actor, models.SavableType(req.TargetType), req.TargetID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"saved": saved})
}

// ListSaved handles GET /api/saved
func (h *EngagementHandler) ListSaved(w http.ResponseWriter, r *http.Request) {
	items := []map[string]interface{}{}

	actor, ok := h.readActor(r)
	if ok {
		saved, err := h.engagementService.ListSaved(r.Context(), actor)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		for _, item := range saved {
			items = append(items, map[string]interface{}{
				"target_type": item.TargetType,
				"target_id":   item.TargetID,
				"created_at":  item.CreatedAt.Format(time.RFC3339),
			})
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}
