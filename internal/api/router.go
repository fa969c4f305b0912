package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nanoreddit-ui-autotests/internal/models"
	"github.com/nanoreddit-ui-autotests/internal/validation"
	"github.com/rs/zerolog"
)

// Backend is the forum the handlers operate on
type Backend interface {
	Register(ctx context.Context, req *models.RegisterUser) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
	Publish(ctx context.Context, userID, title, content string) (*models.Post, error)
	AddComment(ctx context.Context, userID, postID, text string, parentID *string) (*models.Comment, error)
	Ban(ctx context.Context, actorID, email string, until time.Time) error
	Unban(ctx context.Context, actorID, email string) error
	Stats(ctx context.Context) map[string]int
}

const userKey = "user"

// NewRouter creates and configures the Gin router of the forum stand-in
func NewRouter(backend Backend, validator *validation.Validator, log zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	log = log.With().Str("component", "stub-api").Logger()

	router := gin.New()
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	authHandler := NewAuthHandler(backend, validator, log)
	postHandler := NewPostHandler(backend, validator, log)
	adminHandler := NewAdminHandler(backend, log)

	// Health check
	router.GET("/health", healthCheck)
	router.GET("/metrics", metricsHandler(backend))

	// API v1
	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		posts := v1.Group("/posts", authMiddleware(backend))
		{
			posts.POST("/publish", postHandler.Publish)
			posts.POST("/:postId/addComment", postHandler.AddComment)
		}

		admin := v1.Group("/admin/management", authMiddleware(backend))
		{
			admin.POST("/ban/byEmail/:email", adminHandler.Ban)
			admin.POST("/unban/byEmail/:email", adminHandler.Unban)
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "nanoreddit-stub",
	})
}

// metricsHandler returns the store-visible row counts
func metricsHandler(backend Backend) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"database":  backend.Stats(c.Request.Context()),
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// respond wraps data in the responseData envelope the web app expects
func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"responseData": data})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}

// failFor maps forum errors onto HTTP statuses
func failFor(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrBanned):
		fail(c, http.StatusForbidden, models.ErrBanned.Error())
	case errors.Is(err, models.ErrForbidden):
		fail(c, http.StatusForbidden, "Access denied")
	case errors.Is(err, models.ErrUnauthorized), errors.Is(err, models.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, models.ErrNotFound):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrEmailTaken):
		fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrInvalidParent):
		fail(c, http.StatusBadRequest, err.Error())
	default:
		fail(c, http.StatusInternalServerError, "Internal server error")
	}
}

func validationFailed(c *gin.Context, errs []validation.ValidationError) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"message": "Validation error",
		"errors":  errs,
	})
}

// authMiddleware resolves the bearer token into the current user
func authMiddleware(backend Backend) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			fail(c, http.StatusUnauthorized, "missing bearer token")
			return
		}

		user, err := backend.Authenticate(c.Request.Context(), token)
		if err != nil {
			failFor(c, err)
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	user, _ := c.MustGet(userKey).(*models.User)
	return user
}

// recoveryMiddleware turns a handler panic into a 500 with the usual error body
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Str("route", c.FullPath()).Msg("Panic recovered")
				fail(c, http.StatusInternalServerError, "Internal server error")
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs each request by route template, so emails in ban
// paths stay out of the log, along with the authenticated user if any
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		statusCode := c.Writer.Status()
		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		if user, ok := c.Get(userKey); ok {
			if u, ok := user.(*models.User); ok {
				event = event.Str("user_id", u.ID).Str("role", u.Role)
			}
		}

		event.
			Str("method", c.Request.Method).
			Str("route", route).
			Int("status", statusCode).
			Dur("duration", time.Since(start)).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
