package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nanoreddit-ui-autotests/internal/api"
	"github.com/nanoreddit-ui-autotests/internal/mocks"
	"github.com/nanoreddit-ui-autotests/internal/models"
	"github.com/nanoreddit-ui-autotests/internal/repository"
	"github.com/nanoreddit-ui-autotests/internal/validation"
	"github.com/rs/zerolog"
)

func setupTestRouter() (*gin.Engine, *mocks.Forum) {
	gin.SetMode(gin.TestMode)

	forum := mocks.NewForum(0)
	router := api.NewRouter(forum, validation.NewValidator(), zerolog.Nop())

	return router, forum
}

func doJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func responseData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope struct {
		ResponseData map[string]interface{} `json:"responseData"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("invalid JSON response: %v: %s", err, w.Body.String())
	}
	return envelope.ResponseData
}

func registerAndLogin(t *testing.T, router *gin.Engine, user *models.RegisterUser) string {
	t.Helper()
	if w := doJSON(router, "POST", "/api/v1/auth/register", "", user); w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	w := doJSON(router, "POST", "/api/v1/auth/login", "", user.Login())
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	token, _ := responseData(t, w)["token"].(string)
	if token == "" {
		t.Fatal("login response has no token")
	}
	return token
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := setupTestRouter()

	w := doJSON(router, "GET", "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)

	if response["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", response["status"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := setupTestRouter()
	user := models.RandomUser()
	token := registerAndLogin(t, router, user)
	doJSON(router, "POST", "/api/v1/posts/publish", token, models.RandomPost())

	w := doJSON(router, "GET", "/metrics", "", nil)
	var response struct {
		Database map[string]int `json:"database"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)

	if response.Database["users"] != 1 || response.Database["posts"] != 1 {
		t.Errorf("Expected 1 user and 1 post, got %v", response.Database)
	}
}

func TestRegister(t *testing.T) {
	router, _ := setupTestRouter()
	user := models.RandomUser()

	w := doJSON(router, "POST", "/api/v1/auth/register", "", user)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	data := responseData(t, w)
	if data["email"] != user.Email {
		t.Errorf("Expected email %s, got %v", user.Email, data["email"])
	}
	if data["role"] != "ROLE_USER" {
		t.Errorf("Expected role ROLE_USER, got %v", data["role"])
	}

	// same email again
	w = doJSON(router, "POST", "/api/v1/auth/register", "", user)
	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409 for duplicate email, got %d", w.Code)
	}
}

func TestRegister_ValidationError(t *testing.T) {
	router, _ := setupTestRouter()
	user := models.RandomUser()
	user.PasswordConfirmation = user.Password + "x"

	w := doJSON(router, "POST", "/api/v1/auth/register", "", user)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}

	var response struct {
		Message string                       `json:"message"`
		Errors  []validation.ValidationError `json:"errors"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)
	if response.Message != "Validation error" {
		t.Errorf("Expected 'Validation error', got %q", response.Message)
	}
	if len(response.Errors) != 1 || response.Errors[0].Field != "passwordConfirmation" {
		t.Errorf("Expected passwordConfirmation error, got %v", response.Errors)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	router, _ := setupTestRouter()
	user := models.RandomUser()
	doJSON(router, "POST", "/api/v1/auth/register", "", user)

	w := doJSON(router, "POST", "/api/v1/auth/login", "", models.LoginUser{Email: user.Email, Password: "Wrong1234"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestPublishAndComment(t *testing.T) {
	router, forum := setupTestRouter()
	token := registerAndLogin(t, router, models.RandomUser())

	post := models.RandomPost()
	w := doJSON(router, "POST", "/api/v1/posts/publish", token, post)
	if w.Code != http.StatusCreated {
		t.Fatalf("publish: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	postID, _ := responseData(t, w)["id"].(string)
	if postID == "" {
		t.Fatal("publish response has no id")
	}

	w = doJSON(router, "POST", "/api/v1/posts/"+postID+"/addComment", token, models.AddComment{Text: "root"})
	if w.Code != http.StatusCreated {
		t.Fatalf("comment: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	rootID, _ := responseData(t, w)["id"].(string)

	w = doJSON(router, "POST", "/api/v1/posts/"+postID+"/addComment", token, models.AddComment{Text: "reply", ParentID: &rootID})
	if w.Code != http.StatusCreated {
		t.Fatalf("reply: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if parent := responseData(t, w)["parentId"]; parent != rootID {
		t.Errorf("Expected parentId %s, got %v", rootID, parent)
	}

	reply, err := forum.Repositories().Comment.FindLatest(context.Background(), replyFilter(postID, "reply", rootID))
	if err != nil || reply == nil {
		t.Fatalf("reply not stored: %v", err)
	}
}

func TestAddComment_Errors(t *testing.T) {
	router, _ := setupTestRouter()
	token := registerAndLogin(t, router, models.RandomUser())

	w := doJSON(router, "POST", "/api/v1/posts/missing/addComment", token, models.AddComment{Text: "x"})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown post, got %d", w.Code)
	}

	w = doJSON(router, "POST", "/api/v1/posts/publish", token, models.RandomPost())
	postID, _ := responseData(t, w)["id"].(string)

	long := make([]byte, models.MaxCommentLength+1)
	for i := range long {
		long[i] = 'a'
	}
	w = doJSON(router, "POST", "/api/v1/posts/"+postID+"/addComment", token, models.AddComment{Text: string(long)})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for long comment, got %d", w.Code)
	}
}

func TestPublish_RequiresToken(t *testing.T) {
	router, _ := setupTestRouter()

	w := doJSON(router, "POST", "/api/v1/posts/publish", "", models.RandomPost())
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 without token, got %d", w.Code)
	}

	w = doJSON(router, "POST", "/api/v1/posts/publish", "not-a-token", models.RandomPost())
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 with unknown token, got %d", w.Code)
	}
}

func TestBanAndUnban(t *testing.T) {
	router, forum := setupTestRouter()
	ctx := context.Background()

	admin := models.RandomUser()
	adminToken := registerAndLogin(t, router, admin)
	forum.Repositories().User.SetRole(ctx, admin.Email, models.RoleAdmin)

	target := models.RandomUser()
	targetToken := registerAndLogin(t, router, target)

	// regular users cannot ban
	w := doJSON(router, "POST", "/api/v1/admin/management/ban/byEmail/"+admin.Email+"?forSeconds=60", targetToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403 for non-admin, got %d", w.Code)
	}

	w = doJSON(router, "POST", "/api/v1/admin/management/ban/byEmail/"+target.Email+"?forSeconds=3600", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("ban: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// banned users keep their session but cannot write
	w = doJSON(router, "POST", "/api/v1/posts/publish", targetToken, models.RandomPost())
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403 for banned user, got %d", w.Code)
	}
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	if response["message"] != "User is banned" {
		t.Errorf("Expected 'User is banned', got %v", response["message"])
	}

	w = doJSON(router, "POST", "/api/v1/admin/management/unban/byEmail/"+target.Email, adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unban: expected 200, got %d", w.Code)
	}
	w = doJSON(router, "POST", "/api/v1/posts/publish", targetToken, models.RandomPost())
	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201 after unban, got %d", w.Code)
	}
}

func TestBan_InvalidDuration(t *testing.T) {
	router, forum := setupTestRouter()
	admin := models.RandomUser()
	token := registerAndLogin(t, router, admin)
	forum.Repositories().User.SetRole(context.Background(), admin.Email, models.RoleAdmin)

	tests := []struct {
		name  string
		query string
	}{
		{"missing", ""},
		{"zero", "?forSeconds=0"},
		{"negative", "?forSeconds=-5"},
		{"not a number", "?forSeconds=soon"},
		{"overflows duration", "?forSeconds=9223372037"},
		{"overflows int64", "?forSeconds=99999999999999999999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, "POST", "/api/v1/admin/management/ban/byEmail/"+admin.Email+tt.query, token, nil)
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Code)
			}
		})
	}
}

func TestBan_UnknownUser(t *testing.T) {
	router, forum := setupTestRouter()
	admin := models.RandomUser()
	token := registerAndLogin(t, router, admin)
	forum.Repositories().User.SetRole(context.Background(), admin.Email, models.RoleAdmin)

	w := doJSON(router, "POST", "/api/v1/admin/management/ban/byEmail/ghost@example.com?forSeconds=10", token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	router, _ := setupTestRouter()

	w := doJSON(router, "OPTIONS", "/api/v1/posts/publish", "", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type, Authorization" {
		t.Errorf("unexpected allow headers %q", got)
	}
}

func replyFilter(postID, text, parentID string) repository.CommentFilter {
	return repository.CommentFilter{PostID: postID, Text: text, ParentID: &parentID}
}
