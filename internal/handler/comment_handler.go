package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shivakharbanda/journalclub/internal/models"
	"github.com/shivakharbanda/journalclub/internal/service"
	"github.com/shivakharbanda/journalclub/pkg/helpers"
)

type CommentHandler struct {
	commentService service.CommentService
	validator      *helpers.CustomValidator
}

func NewCommentHandler(commentService service.CommentService, validator *helpers.CustomValidator) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		validator:      validator,
	}
}

// Create handles POST /api/comments (authenticated)
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := requestIdentity(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthenticated")
		return
	}

	var req struct {
		TargetType string  `json:"target_type" validate:"required,savable_type"`
		TargetID   uint64  `json:"target_id" validate:"required"`
		ParentID   *uint64 `json:"parent_id"`
		Body       string  `json:"body" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := h.commentService.Add(r.Context(), user.ID,
		models.SavableType(req.TargetType), req.TargetID, req.ParentID, req.Body)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, commentJSON(comment))
}

// List handles GET /api/comments?target_type=episode&target_id=1
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	targetType := models.SavableType(r.URL.Query().Get("target_type"))
	targetID := uint64(queryInt(r, "target_id", 0))
	if (targetType != models.SavableEpisode && targetType != models.SavableTopic) || targetID == 0 {
		writeError(w, http.StatusBadRequest, "invalid comment target")
		return
	}

	list, err := h.commentService.ListForTarget(r.Context(), targetType, targetID,
		queryInt(r, "limit", 0), queryInt(r, "offset", 0))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	comments := make([]map[string]interface{}, 0, len(list.Comments))
	for _, c := range list.Comments {
		comments = append(comments, commentJSON(c))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"comments": comments,
		"total":    list.Total,
	})
}

// Thread handles GET /api/comments/{id}/thread
func (h *CommentHandler) Thread(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	thread, err := h.commentService.Thread(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	comments := make([]map[string]interface{}, 0, len(thread))
	for _, c := range thread {
		comments = append(comments, commentJSON(c))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"comments": comments})
}

func commentJSON(c *models.Comment) map[string]interface{} {
	out := map[string]interface{}{
		"id":            c.ID,
		"target_type":   c.TargetType,
		"target_id":     c.TargetID,
		"user_id":       c.UserID,
		"username":      c.Username,
		"body":          c.Body,
		"replies_count": c.RepliesCount,
		"created_at":    c.CreatedAt.Format(time.RFC3339),
	}
	if c.ParentID.Valid {
		out["parent_id"] = c.ParentID.Int64
	}
	return out
}
