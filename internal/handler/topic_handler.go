package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shivakharbanda/journalclub/internal/models"
	"github.com/shivakharbanda/journalclub/internal/service"
	"github.com/shivakharbanda/journalclub/pkg/helpers"
)

type TopicHandler struct {
	topicService service.TopicService
	validator    *helpers.CustomValidator
}

func NewTopicHandler(topicService service.TopicService, validator *helpers.CustomValidator) *TopicHandler {
	return &TopicHandler{
		topicService: topicService,
		validator:    validator,
	}
}

type topicRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
}

// List handles GET /api/topics
func (h *TopicHandler) List(w http.ResponseWriter, r *http.Request) {
	topics, err := h.topicService.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]map[string]interface{}, 0, len(topics))
	for _, t := range topics {
		out = append(out, topicJSON(t))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"topics": out})
}

// Get handles GET /api/topics/{slug}
func (h *TopicHandler) Get(w http.ResponseWriter, r *http.Request) {
	topic, err := h.topicService.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, topicJSON(topic))
}

// Create handles POST /api/topics (admin)
func (h *TopicHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req topicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	topic, err := h.topicService.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, topicJSON(topic))
}

// Update handles PUT /api/topics/{slug} (admin)
func (h *TopicHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req topicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	topic, err := h.topicService.Update(r.Context(), r.PathValue("slug"), req.Name, req.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, topicJSON(topic))
}

// Delete handles DELETE /api/topics/{slug} (admin)
func (h *TopicHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.topicService.Delete(r.Context(), r.PathValue("slug")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

func topicJSON(t *models.Topic) map[string]interface{} {
	return map[string]interface{}{
		"id":          t.ID,
		"name":        t.Name,
		"slug":        t.Slug,
		"description": t.Description,
	}
}
