package service

import (
	"context"
	"time"

	"github.com/nanoreddit-ui-autotests/internal/apiclient"
	"github.com/nanoreddit-ui-autotests/internal/config"
	"github.com/nanoreddit-ui-autotests/internal/models"
	"github.com/nanoreddit-ui-autotests/internal/repository"
	"github.com/nanoreddit-ui-autotests/internal/validation"
	"github.com/rs/zerolog"
)

// ReconcileService waits for, fetches, counts and cleans up store state
// produced by UI and API actions
type ReconcileService interface {
	WaitForPost(ctx context.Context, q PostQuery) (*models.Post, error)
	WaitForComment(ctx context.Context, q CommentQuery) (*models.Comment, error)
	WaitForBanStatus(ctx context.Context, email string, banned bool, timeout time.Duration) (*models.User, error)
	FetchSingleUser(ctx context.Context, email string) (*models.User, error)
	FetchSinglePost(ctx context.Context, title, authorEmail string) (*models.Post, error)
	Count(ctx context.Context, table string, filter map[string]interface{}) (int, error)
	CountComments(ctx context.Context, q CommentQuery) (int, error)
	ClearAllPosts(ctx context.Context, timeout time.Duration) error
	DeleteUserByEmail(ctx context.Context, email string) (int64, error)
	DeletePostByTitleAndAuthor(ctx context.Context, title, authorEmail string) (int64, error)
	PromoteToAdmin(ctx context.Context, email string) error
}

// ProvisionService prepares users, posts and comments through the API
type ProvisionService interface {
	CreateUser(ctx context.Context) (*models.RegisterUser, error)
	CreateUsers(ctx context.Context, n int) ([]*models.RegisterUser, error)
	CreatePost(ctx context.Context, creds *models.RegisterUser, post *models.PublishPost) (*models.PublishPost, error)
	CreatePostWithComment(ctx context.Context, creds *models.RegisterUser, post *models.PublishPost, text string) (postID, commentText string, err error)
	CreateAdmin(ctx context.Context, existing *models.RegisterUser) (*models.RegisterUser, error)
	CreateBannedUser(ctx context.Context, admin *models.RegisterUser) (*models.RegisterUser, error)
	AuthenticatedToken(ctx context.Context, creds *models.RegisterUser) (string, error)
}

// ForumAPI is the part of the REST API provisioning relies on
type ForumAPI interface {
	Register(ctx context.Context, user *models.RegisterUser) (*apiclient.Envelope, error)
	LoginAndGetToken(ctx context.Context, email, password string) (string, error)
	Publish(ctx context.Context, token string, post *models.PublishPost) (string, error)
	AddComment(ctx context.Context, token, postID string, comment *models.AddComment) (string, error)
	Ban(ctx context.Context, token, email string, duration time.Duration) error
	Unban(ctx context.Context, token, email string) error
}

// Services holds all service interfaces
type Services struct {
	Reconcile ReconcileService
	Provision ProvisionService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, api ForumAPI, cfg *config.Config, log zerolog.Logger) *Services {
	reconcileSvc := newReconcileService(repos, cfg.Poll, cfg.Provision.AdminRole, log)
	provisionSvc := newProvisionService(api, reconcileSvc, validation.NewValidator(), cfg.Provision, log)

	return &Services{
		Reconcile: reconcileSvc,
		Provision: provisionSvc,
	}
}
