// Package apiclient talks to the forum REST API to prepare test data
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nanoreddit-ui-autotests/internal/config"
	"github.com/nanoreddit-ui-autotests/internal/models"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// Response envelope paths
const (
	TokenPath = "responseData.token"
	IDPath    = "responseData.id"
)

// TransportError is returned for every non-2xx response. Requests are
// never retried
type TransportError struct {
	Op     string
	Status int
	Body   string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s failed: HTTP %d: %s", e.Op, e.Status, e.Body)
}

// Envelope is a successful API response
type Envelope struct {
	Status int
	Body   []byte
}

// Get extracts a value from the response body by gjson path
func (e *Envelope) Get(path string) gjson.Result {
	return gjson.GetBytes(e.Body, path)
}

// Client is a forum REST API client
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// New creates a client for the API base URL in cfg
func New(cfg config.AppConfig, log zerolog.Logger) *Client {
	return NewWithHTTPClient(cfg.APIBaseURL, &http.Client{Timeout: cfg.APITimeout}, log)
}

// NewWithHTTPClient creates a client with a caller supplied http.Client
func NewWithHTTPClient(baseURL string, httpClient *http.Client, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		log:     log.With().Str("component", "apiclient").Logger(),
	}
}

// Register creates a user account
func (c *Client) Register(ctx context.Context, user *models.RegisterUser) (*Envelope, error) {
	return c.post(ctx, "register", "/api/v1/auth/register", "", user)
}

// Login authenticates and returns the raw response
func (c *Client) Login(ctx context.Context, creds models.LoginUser) (*Envelope, error) {
	return c.post(ctx, "login", "/api/v1/auth/login", "", creds)
}

// LoginAndGetToken authenticates and returns the bearer token
func (c *Client) LoginAndGetToken(ctx context.Context, email, password string) (string, error) {
	env, err := c.Login(ctx, models.LoginUser{Email: email, Password: password})
	if err != nil {
		return "", err
	}
	return requireString(env, "login", TokenPath)
}

// Publish creates a post and returns its id
func (c *Client) Publish(ctx context.Context, token string, post *models.PublishPost) (string, error) {
	env, err := c.post(ctx, "publish", "/api/v1/posts/publish", token, post)
	if err != nil {
		return "", err
	}
	return requireString(env, "publish", IDPath)
}

// AddComment adds a comment (or a reply when ParentID is set) and returns its id
func (c *Client) AddComment(ctx context.Context, token, postID string, comment *models.AddComment) (string, error) {
	path := "/api/v1/posts/" + url.PathEscape(postID) + "/addComment"
	env, err := c.post(ctx, "add comment", path, token, comment)
	if err != nil {
		return "", err
	}
	return requireString(env, "add comment", IDPath)
}

// Ban bans the user with email for the given duration, rounded down to
// whole seconds
func (c *Client) Ban(ctx context.Context, token, email string, duration time.Duration) error {
	seconds := int64(duration / time.Second)
	path := "/api/v1/admin/management/ban/byEmail/" + url.PathEscape(email) +
		"?forSeconds=" + strconv.FormatInt(seconds, 10)
	_, err := c.post(ctx, "ban", path, token, nil)
	return err
}

// Unban lifts the ban of the user with email
func (c *Client) Unban(ctx context.Context, token, email string) error {
	path := "/api/v1/admin/management/unban/byEmail/" + url.PathEscape(email)
	_, err := c.post(ctx, "unban", path, token, nil)
	return err
}

func (c *Client) post(ctx context.Context, op, path, token string, payload interface{}) (*Envelope, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
		c.log.Debug().Str("op", op).RawJSON("payload", maskJSON(data)).Msg("API request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", op, err)
	}

	c.log.Debug().Str("op", op).Int("status", resp.StatusCode).Msg("API response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Op: op, Status: resp.StatusCode, Body: string(respBody)}
	}

	return &Envelope{Status: resp.StatusCode, Body: respBody}, nil
}

func requireString(env *Envelope, op, path string) (string, error) {
	value := env.Get(path)
	if !value.Exists() || value.String() == "" {
		return "", fmt.Errorf("%s: response has no %s: %s", op, path, env.Body)
	}
	return value.String(), nil
}
