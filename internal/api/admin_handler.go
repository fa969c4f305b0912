package api

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// maxBanSeconds is the longest ban whose duration fits a time.Duration
const maxBanSeconds = math.MaxInt64 / int64(time.Second)

// AdminHandler handles moderation endpoints
type AdminHandler struct {
	backend Backend
	log     zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(backend Backend, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		backend: backend,
		log:     log.With().Str("handler", "admin").Logger(),
	}
}

// Ban handles POST /api/v1/admin/management/ban/byEmail/:email?forSeconds=N
func (h *AdminHandler) Ban(c *gin.Context) {
	seconds, err := strconv.ParseInt(c.Query("forSeconds"), 10, 64)
	if err != nil || seconds <= 0 {
		fail(c, http.StatusBadRequest, "forSeconds must be a positive integer")
		return
	}
	if seconds > maxBanSeconds {
		fail(c, http.StatusBadRequest, "forSeconds is too large")
		return
	}

	email := c.Param("email")
	until := time.Now().Add(time.Duration(seconds) * time.Second)
	if err := h.backend.Ban(c.Request.Context(), currentUser(c).ID, email, until); err != nil {
		failFor(c, err)
		return
	}

	h.log.Info().Str("email", email).Int64("seconds", seconds).Msg("User banned")
	respond(c, http.StatusOK, gin.H{"email": email, "bannedUntil": until.UTC().Format(time.RFC3339)})
}

// Unban handles POST /api/v1/admin/management/unban/byEmail/:email
func (h *AdminHandler) Unban(c *gin.Context) {
	email := c.Param("email")
	if err := h.backend.Unban(c.Request.Context(), currentUser(c).ID, email); err != nil {
		failFor(c, err)
		return
	}

	h.log.Info().Str("email", email).Msg("User unbanned")
	respond(c, http.StatusOK, gin.H{"email": email, "bannedUntil": nil})
}
