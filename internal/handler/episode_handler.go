package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shivakharbanda/journalclub/internal/models"
	"github.com/shivakharbanda/journalclub/internal/service"
	"github.com/shivakharbanda/journalclub/pkg/helpers"
)

type EpisodeHandler struct {
	episodeService service.EpisodeService
	actorService   service.ActorService
	validator      *helpers.CustomValidator
}

func NewEpisodeHandler(episodeService service.EpisodeService, actorService service.ActorService, validator *helpers.CustomValidator) *EpisodeHandler {
	return &EpisodeHandler{
		episodeService: episodeService,
		actorService:   actorService,
		validator:      validator,
	}
}

type episodeRequest struct {
	Title       string   `json:"title" validate:"required,max=255"`
	SummaryText string   `json:"summary_text"`
	Description string   `json:"description"`
	Sources     []string `json:"sources"`
	AudioURL    string   `json:"audio_url" validate:"omitempty,url"`
	ImageURL    string   `json:"image_url" validate:"omitempty,url"`
	TopicIDs    []uint64 `json:"topic_ids"`
	Tags        []string `json:"tags"`
}

func (req episodeRequest) toInput() service.EpisodeInput {
	return service.EpisodeInput{
		Title:       req.Title,
		SummaryText: req.SummaryText,
		Description: req.Description,
		Sources:     req.Sources,
		AudioURL:    req.AudioURL,
		ImageURL:    req.ImageURL,
		TopicIDs:    req.TopicIDs,
		Tags:        req.Tags,
	}
}

// List handles GET /api/episodes
func (h *EpisodeHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)
	search := r.URL.Query().Get("search")

	episodes, err := h.episodeService.List(r.Context(), search, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]map[string]interface{}, 0, len(episodes))
	for _, e := range episodes {
		out = append(out, episodeJSON(e))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"episodes": out})
}

// Get handles GET /api/episodes/{slug}
func (h *EpisodeHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	// Engagement state is attached only when the request carries an existing
	// identity; a plain anonymous read never mints a guest row.
	user, deviceToken := requestIdentity(r)
	actor, err := h.actorService.ResolveExisting(r.Context(), user, deviceToken)
	if err != nil && err != service.ErrMissingActor {
		writeServiceError(w, err)
		return
	}

	detail, err := h.episodeService.GetDetail(r.Context(), slug, actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if detail == nil {
		writeError(w, http.StatusNotFound, "episode not found")
		return
	}

	writeJSON(w, http.StatusOK, episodeDetailJSON(detail))
}

// Create handles POST /api/episodes (admin)
func (h *EpisodeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req episodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	episode, err := h.episodeService.Create(r.Context(), req.toInput())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, episodeJSON(episode))
}

// Update handles PUT /api/episodes/{slug} (admin)
func (h *EpisodeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req episodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	episode, err := h.episodeService.Update(r.Context(), r.PathValue("slug"), req.toInput())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, episodeJSON(episode))
}

// Delete handles DELETE /api/episodes/{slug} (admin)
func (h *EpisodeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.episodeService.Delete(r.Context(), r.PathValue("slug")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

func episodeJSON(e *models.Episode) map[string]interface{} {
	return map[string]interface{}{
		"id":             e.ID,
		"title":          e.Title,
		"slug":           e.Slug,
		"summary_text":   e.SummaryText,
		"description":    e.Description,
		"sources":        e.Sources,
		"audio_url":      e.AudioURL,
		"image_url":      e.ImageURL,
		"likes_count":    e.LikesCount,
		"dislikes_count": e.DislikesCount,
		"created_at":     e.CreatedAt.Format(time.RFC3339),
	}
}

func episodeDetailJSON(d *models.EpisodeDetail) map[string]interface{} {
	out := episodeJSON(&d.Episode)

	topics := make([]map[string]interface{}, 0, len(d.Topics))
	for _, t := range d.Topics {
		topics = append(topics, map[string]interface{}{
			"id": t.ID, "name": t.Name, "slug": t.Slug,
		})
	}
	tags := make([]map[string]interface{}, 0, len(d.Tags))
	for _, t := range d.Tags {
		tags = append(tags, map[string]interface{}{
			"id": t.ID, "name": t.Name, "slug": t.Slug,
		})
	}

	out["topics"] = topics
	out["tags"] = tags
	out["user_reaction"] = string(d.UserReaction)
	out["saved"] = d.Saved
	return out
}
