package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nanoreddit-ui-autotests/internal/models"
	"github.com/nanoreddit-ui-autotests/internal/validation"
	"github.com/rs/zerolog"
)

// AuthHandler handles registration and login
type AuthHandler struct {
	backend   Backend
	validator *validation.Validator
	log       zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(backend Backend, validator *validation.Validator, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		backend:   backend,
		validator: validator,
		log:       log.With().Str("handler", "auth").Logger(),
	}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterUser
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if errs := h.validator.Validate(&req); len(errs) > 0 {
		validationFailed(c, errs)
		return
	}

	user, err := h.backend.Register(c.Request.Context(), &req)
	if err != nil {
		failFor(c, err)
		return
	}

	h.log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User registered")
	respond(c, http.StatusCreated, gin.H{
		"id":       user.ID,
		"email":    user.Email,
		"username": user.Username,
		"role":     user.DisplayRole(),
	})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginUser
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if errs := h.validator.Validate(&req); len(errs) > 0 {
		validationFailed(c, errs)
		return
	}

	token, err := h.backend.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failFor(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"token": token})
}
