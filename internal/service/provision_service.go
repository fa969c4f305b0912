package service

import (
	"context"
	"fmt"

	"github.com/nanoreddit-ui-autotests/internal/config"
	"github.com/nanoreddit-ui-autotests/internal/models"
	"github.com/nanoreddit-ui-autotests/internal/validation"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// provisionService is the concrete implementation of ProvisionService
type provisionService struct {
	api       ForumAPI
	reconcile ReconcileService
	validator *validation.Validator
	cfg       config.ProvisionConfig
	log       zerolog.Logger
}

// newProvisionService creates a new ProvisionService
func newProvisionService(api ForumAPI, reconcile ReconcileService, validator *validation.Validator, cfg config.ProvisionConfig, log zerolog.Logger) *provisionService {
	return &provisionService{
		api:       api,
		reconcile: reconcile,
		validator: validator,
		cfg:       cfg,
		log:       log.With().Str("service", "provision").Logger(),
	}
}

// register validates the payload locally before sending it so that a bad
// generator shows up as a validation error instead of an HTTP 400
func (s *provisionService) register(ctx context.Context, user *models.RegisterUser) error {
	if errs := s.validator.Validate(user); len(errs) > 0 {
		return fmt.Errorf("invalid registration payload: %w", validation.Errors(errs))
	}
	if _, err := s.api.Register(ctx, user); err != nil {
		return fmt.Errorf("failed to register %s: %w", user.Email, err)
	}
	return nil
}

// CreateUser registers a user with random valid credentials
func (s *provisionService) CreateUser(ctx context.Context) (*models.RegisterUser, error) {
	user := models.RandomUser()
	if err := s.register(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Str("step", "create_user").Str("email", user.Email).Msg("User registered via API")
	return user, nil
}

// CreateUsers registers n independent users concurrently. Any failure
// fails the whole batch
func (s *provisionService) CreateUsers(ctx context.Context, n int) ([]*models.RegisterUser, error) {
	if n < 0 {
		return nil, fmt.Errorf("user count must not be negative, got %d", n)
	}

	batch := validation.NewValidator()
	users := make([]*models.RegisterUser, n)
	for i := range users {
		user := models.RandomUser()
		if errs := batch.ValidateRegistration(user); len(errs) > 0 {
			return nil, fmt.Errorf("invalid registration payload: %w", validation.Errors(errs))
		}
		batch.AddUserEmail(user.Email)
		users[i] = user
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, user := range users {
		g.Go(func() error {
			return s.register(gctx, user)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.log.Info().Str("step", "create_users").Int("count", n).Msg("Users registered via API")
	return users, nil
}

// AuthenticatedToken logs in and returns the bearer token
func (s *provisionService) AuthenticatedToken(ctx context.Context, creds *models.RegisterUser) (string, error) {
	token, err := s.api.LoginAndGetToken(ctx, creds.Email, creds.Password)
	if err != nil {
		return "", fmt.Errorf("failed to log in as %s: %w", creds.Email, err)
	}
	return token, nil
}

// CreatePost publishes post (a random one when nil) as creds and returns it
// with the id the API assigned
func (s *provisionService) CreatePost(ctx context.Context, creds *models.RegisterUser, post *models.PublishPost) (*models.PublishPost, error) {
	if post == nil {
		post = models.RandomPost()
	}
	if errs := s.validator.Validate(post); len(errs) > 0 {
		return nil, fmt.Errorf("invalid post payload: %w", validation.Errors(errs))
	}

	token, err := s.AuthenticatedToken(ctx, creds)
	if err != nil {
		return nil, err
	}

	id, err := s.api.Publish(ctx, token, post)
	if err != nil {
		return nil, fmt.Errorf("failed to publish '%s': %w", post.Title, err)
	}
	post.ID = id

	s.log.Info().Str("step", "create_post").Str("post_id", id).Str("title", post.Title).
		Str("author", creds.Email).Msg("Post published via API")
	return post, nil
}

// CreatePostWithComment publishes a post and adds one root comment to it
func (s *provisionService) CreatePostWithComment(ctx context.Context, creds *models.RegisterUser, post *models.PublishPost, text string) (string, string, error) {
	if post == nil {
		post = models.RandomPost()
	}
	comment := &models.AddComment{Text: text}
	if text == "" {
		comment = models.RandomComment()
	}
	if errs := s.validator.Validate(comment); len(errs) > 0 {
		return "", "", fmt.Errorf("invalid comment payload: %w", validation.Errors(errs))
	}

	token, err := s.AuthenticatedToken(ctx, creds)
	if err != nil {
		return "", "", err
	}

	postID, err := s.api.Publish(ctx, token, post)
	if err != nil {
		return "", "", fmt.Errorf("failed to publish '%s': %w", post.Title, err)
	}
	post.ID = postID

	if _, err := s.api.AddComment(ctx, token, postID, comment); err != nil {
		return "", "", fmt.Errorf("failed to comment on post %s: %w", postID, err)
	}

	s.log.Info().Str("step", "create_post_with_comment").Str("post_id", postID).Msg("Post and comment created via API")
	return postID, comment.Text, nil
}

// CreateAdmin registers a new user, or reuses existing, and grants it the
// admin role directly in the store
func (s *provisionService) CreateAdmin(ctx context.Context, existing *models.RegisterUser) (*models.RegisterUser, error) {
	admin := existing
	if admin == nil {
		var err error
		if admin, err = s.CreateUser(ctx); err != nil {
			return nil, err
		}
	}

	if err := s.reconcile.PromoteToAdmin(ctx, admin.Email); err != nil {
		return nil, err
	}

	s.log.Info().Str("step", "create_admin").Str("email", admin.Email).Msg("Admin ready")
	return admin, nil
}

// CreateBannedUser registers a user and bans it as admin for the configured
// duration. Confirming the ban in the store is left to WaitForBanStatus
func (s *provisionService) CreateBannedUser(ctx context.Context, admin *models.RegisterUser) (*models.RegisterUser, error) {
	user, err := s.CreateUser(ctx)
	if err != nil {
		return nil, err
	}

	token, err := s.AuthenticatedToken(ctx, admin)
	if err != nil {
		return nil, err
	}

	duration := s.cfg.BanDuration
	if duration <= 0 {
		duration = config.DefaultProvisionConfig().BanDuration
	}
	if err := s.api.Ban(ctx, token, user.Email, duration); err != nil {
		return nil, fmt.Errorf("failed to ban %s: %w", user.Email, err)
	}

	s.log.Info().Str("step", "create_banned_user").Str("email", user.Email).Dur("duration", duration).
		Msg("User banned via API")
	return user, nil
}
