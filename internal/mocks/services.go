package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nanoreddit-ui-autotests/internal/apiclient"
	"github.com/nanoreddit-ui-autotests/internal/models"
	"github.com/nanoreddit-ui-autotests/internal/service"
)

// MockForumAPI is a mock implementation of service.ForumAPI. It records
// every call and fails the ones whose Func hook returns an error
type MockForumAPI struct {
	RegisterFunc func(ctx context.Context, user *models.RegisterUser) error
	PublishFunc  func(ctx context.Context, token string, post *models.PublishPost) error
	BanFunc      func(ctx context.Context, token, email string, duration time.Duration) error

	mu         sync.Mutex
	Registered []*models.RegisterUser
	Published  []*models.PublishPost
	Comments   map[string][]*models.AddComment
	Bans       map[string]time.Duration
	Logins     int
}

// Verify interface compliance
var _ service.ForumAPI = (*MockForumAPI)(nil)

func NewMockForumAPI() *MockForumAPI {
	return &MockForumAPI{
		Comments: make(map[string][]*models.AddComment),
		Bans:     make(map[string]time.Duration),
	}
}

func (m *MockForumAPI) Register(ctx context.Context, user *models.RegisterUser) (*apiclient.Envelope, error) {
	if m.RegisterFunc != nil {
		if err := m.RegisterFunc(ctx, user); err != nil {
			return nil, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Registered = append(m.Registered, user)
	return &apiclient.Envelope{Status: 201, Body: []byte(fmt.Sprintf(`{"responseData":{"email":%q}}`, user.Email))}, nil
}

func (m *MockForumAPI) LoginAndGetToken(ctx context.Context, email, password string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logins++
	return "token-" + email, nil
}

func (m *MockForumAPI) Publish(ctx context.Context, token string, post *models.PublishPost) (string, error) {
	if m.PublishFunc != nil {
		if err := m.PublishFunc(ctx, token, post); err != nil {
			return "", err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, post)
	return uuid.NewString(), nil
}

func (m *MockForumAPI) AddComment(ctx context.Context, token, postID string, comment *models.AddComment) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Comments[postID] = append(m.Comments[postID], comment)
	return uuid.NewString(), nil
}

func (m *MockForumAPI) Ban(ctx context.Context, token, email string, duration time.Duration) error {
	if m.BanFunc != nil {
		if err := m.BanFunc(ctx, token, email, duration); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Bans[email] = duration
	return nil
}

func (m *MockForumAPI) Unban(ctx context.Context, token, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Bans, email)
	return nil
}
