package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nanoreddit-ui-autotests/internal/models"
	"github.com/nanoreddit-ui-autotests/internal/validation"
	"github.com/rs/zerolog"
)

// PostHandler handles publishing and commenting
type PostHandler struct {
	backend   Backend
	validator *validation.Validator
	log       zerolog.Logger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(backend Backend, validator *validation.Validator, log zerolog.Logger) *PostHandler {
	return &PostHandler{
		backend:   backend,
		validator: validator,
		log:       log.With().Str("handler", "posts").Logger(),
	}
}

// Publish handles POST /api/v1/posts/publish
func (h *PostHandler) Publish(c *gin.Context) {
	var req models.PublishPost
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if errs := h.validator.Validate(&req); len(errs) > 0 {
		validationFailed(c, errs)
		return
	}

	user := currentUser(c)
	post, err := h.backend.Publish(c.Request.Context(), user.ID, req.Title, req.Content)
	if err != nil {
		failFor(c, err)
		return
	}

	h.log.Info().Str("post_id", post.ID).Str("author", user.Email).Msg("Post published")
	respond(c, http.StatusCreated, gin.H{
		"id":        post.ID,
		"title":     post.Title,
		"content":   post.Content,
		"createdAt": post.CreatedAt,
	})
}

// AddComment handles POST /api/v1/posts/:postId/addComment
func (h *PostHandler) AddComment(c *gin.Context) {
	var req models.AddComment
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if errs := h.validator.Validate(&req); len(errs) > 0 {
		validationFailed(c, errs)
		return
	}

	user := currentUser(c)
	comment, err := h.backend.AddComment(c.Request.Context(), user.ID, c.Param("postId"), req.Text, req.ParentID)
	if err != nil {
		failFor(c, err)
		return
	}

	respond(c, http.StatusCreated, gin.H{
		"id":       comment.ID,
		"postId":   comment.PostID,
		"parentId": comment.ParentID,
		"text":     comment.Text,
	})
}
