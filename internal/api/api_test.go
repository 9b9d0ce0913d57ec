package api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Albion-ops/bytewave-hub/internal/api"
	"github.com/Albion-ops/bytewave-hub/internal/auth"
	"github.com/Albion-ops/bytewave-hub/internal/config"
	"github.com/Albion-ops/bytewave-hub/internal/listing"
	"github.com/Albion-ops/bytewave-hub/internal/mocks"
	"github.com/Albion-ops/bytewave-hub/internal/models"
	"github.com/Albion-ops/bytewave-hub/internal/service"
	"github.com/Albion-ops/bytewave-hub/internal/validation"
)

const testSecret = "test-secret"

type testEnv struct {
	router     *gin.Engine
	listing    *mocks.MockListingService
	posts      *mocks.MockPostService
	categories *mocks.MockCategoryService
	comments   *mocks.MockCommentService
	roles      *mocks.MockRoleService
	stats      *mocks.MockStatsService
	export     *mocks.MockExportService
}

type fakeHealth struct {
	err error
}

func (f fakeHealth) HealthCheck(ctx context.Context) error { return f.err }
func (f fakeHealth) Stats() sql.DBStats                    { return sql.DBStats{OpenConnections: 3, InUse: 1, Idle: 2} }

func setupTestRouter(health api.HealthChecker) *testEnv {
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		listing:    mocks.NewMockListingService(),
		posts:      mocks.NewMockPostService(),
		categories: mocks.NewMockCategoryService(),
		comments:   mocks.NewMockCommentService(),
		roles:      mocks.NewMockRoleService(),
		stats:      mocks.NewMockStatsService(),
		export:     mocks.NewMockExportService(),
	}

	services := &service.Services{
		Listing:  env.listing,
		Post:     env.posts,
		Category: env.categories,
		Comment:  env.comments,
		Role:     env.roles,
		Stats:    env.stats,
		Export:   env.export,
	}

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			RequestTimeout: 5 * time.Second,
			AllowedOrigins: []string{"https://bytewave.example"},
		},
		Auth: config.AuthConfig{JWTSecret: testSecret, Audience: "authenticated"},
	}

	verifier := auth.NewVerifier(cfg.Auth)
	env.router = api.NewRouter(services, verifier, health, cfg, zerolog.Nop())
	return env
}

func signToken(t *testing.T, subject string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Audience:  jwt.ClaimStrings{"authenticated"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func (env *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
	}
	return response
}

func TestHealthEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		health     api.HealthChecker
		wantStatus int
		wantBody   string
	}{
		{"no store configured", nil, http.StatusOK, "healthy"},
		{"store reachable", fakeHealth{}, http.StatusOK, "healthy"},
		{"store down", fakeHealth{err: errors.New("connection refused")}, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestRouter(tt.health)
			w := env.do("GET", "/health", "", nil)

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			response := decode(t, w)
			if response["status"] != tt.wantBody {
				t.Errorf("Expected status %q, got %v", tt.wantBody, response["status"])
			}
			if response["service"] != "bytewave-hub" {
				t.Errorf("Expected service name, got %v", response["service"])
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestRouter(fakeHealth{})
	env.stats.Stats = models.DashboardStats{Posts: 42, Categories: 5, Users: 10, Comments: 300}

	w := env.do("GET", "/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	response := decode(t, w)
	db := response["database"].(map[string]interface{})
	if db["posts"].(float64) != 42 {
		t.Errorf("Expected 42 posts, got %v", db["posts"])
	}
	pool := response["pool"].(map[string]interface{})
	if pool["open_connections"].(float64) != 3 {
		t.Errorf("Expected 3 open connections, got %v", pool["open_connections"])
	}
}

func TestListPosts_ParsesQueryState(t *testing.T) {
	env := setupTestRouter(nil)
	env.listing.ListPostsFunc = func(ctx context.Context, state listing.State) (*listing.Page, error) {
		return &listing.Page{
			Posts:      []models.PostSummary{{ID: "p1", Title: "Hello", Slug: "hello"}},
			Pagination: listing.NewMeta(state, 9, 25),
			Query:      state,
		}, nil
	}

	w := env.do("GET", "/v1/posts?q=+camera+&category=security&page=2", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	want := listing.State{Search: "camera", Category: "security", Page: 2}
	if env.listing.LastState != want {
		t.Errorf("Expected state %+v, got %+v", want, env.listing.LastState)
	}

	var page listing.Page
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if len(page.Posts) != 1 || page.Posts[0].Slug != "hello" {
		t.Errorf("Unexpected posts: %+v", page.Posts)
	}
	if page.Pagination.TotalPages != 3 || page.Pagination.Range.From != 9 || page.Pagination.Range.To != 17 {
		t.Errorf("Unexpected pagination: %+v", page.Pagination)
	}
	if len(page.Pagination.Items) != 3 {
		t.Errorf("Expected 3 strip items, got %d", len(page.Pagination.Items))
	}
	if href := page.Pagination.Items[0].Href; href != "?category=security&q=camera" {
		t.Errorf("Expected first page link without page param, got %q", href)
	}
}

func TestListPosts_MalformedPageDefaultsToFirst(t *testing.T) {
	env := setupTestRouter(nil)

	w := env.do("GET", "/v1/posts?page=abc", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if env.listing.LastState != listing.NewState() {
		t.Errorf("Expected default state, got %+v", env.listing.LastState)
	}
}

func TestListPosts_LoadFailure(t *testing.T) {
	env := setupTestRouter(nil)
	env.listing.ListPostsFunc = func(ctx context.Context, state listing.State) (*listing.Page, error) {
		return nil, fmt.Errorf("%w: count posts: %w", service.ErrLoadFailed, errors.New("timeout"))
	}

	w := env.do("GET", "/v1/posts", "", nil)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
	if response := decode(t, w); response["error"] != "failed to load data" {
		t.Errorf("Expected generic error, got %v", response["error"])
	}
}

func TestGetPost_ETag(t *testing.T) {
	env := setupTestRouter(nil)
	env.posts.GetBySlugFunc = func(ctx context.Context, slug string) (*models.PostDetail, error) {
		return &models.PostDetail{
			Post:        models.Post{ID: "p1", Slug: slug, Title: "Hello", Status: models.PostStatusPublished},
			ContentHTML: "<p>Hi</p>",
		}, nil
	}

	w := env.do("GET", "/v1/posts/hello", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("Expected ETag header")
	}
	if response := decode(t, w); response["content_html"] != "<p>Hi</p>" {
		t.Errorf("Expected rendered content, got %v", response["content_html"])
	}

	req := httptest.NewRequest("GET", "/v1/posts/hello", nil)
	req.Header.Set("If-None-Match", etag)
	cached := httptest.NewRecorder()
	env.router.ServeHTTP(cached, req)

	if cached.Code != http.StatusNotModified {
		t.Errorf("Expected status 304, got %d", cached.Code)
	}
	if cached.Body.Len() != 0 {
		t.Errorf("Expected empty body, got %q", cached.Body.String())
	}
}

func TestGetPost_NotFound(t *testing.T) {
	env := setupTestRouter(nil)

	w := env.do("GET", "/v1/posts/missing", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestSubmitComment(t *testing.T) {
	userID := uuid.NewString()

	tests := []struct {
		name       string
		token      string
		body       interface{}
		submitErr  error
		wantStatus int
	}{
		{"anonymous", "", models.CommentInput{Content: "Nice"}, nil, http.StatusUnauthorized},
		{"anonymous invalid body", "", "just a string", nil, http.StatusUnauthorized},
		{"bad token", "not-a-jwt", models.CommentInput{Content: "Nice"}, nil, http.StatusUnauthorized},
		{"invalid body", "valid", "just a string", nil, http.StatusBadRequest},
		{"blank content", "valid", models.CommentInput{Content: "  "}, &service.FieldErrors{Errors: []validation.ValidationError{{Field: "content", Message: "content is required"}}}, http.StatusBadRequest},
		{"unknown post", "valid", models.CommentInput{Content: "Nice"}, service.ErrNotFound, http.StatusNotFound},
		{"created", "valid", models.CommentInput{Content: "Nice"}, nil, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestRouter(nil)
			var gotIdentity *auth.Identity
			calls := 0
			env.comments.SubmitFunc = func(ctx context.Context, identity *auth.Identity, slug, content string) ([]models.Comment, error) {
				calls++
				gotIdentity = identity
				if identity == nil {
					return nil, service.ErrAuthRequired
				}
				if tt.submitErr != nil {
					return nil, tt.submitErr
				}
				return []models.Comment{{ID: "c2", Content: content}, {ID: "c1", Content: "older"}}, nil
			}

			token := tt.token
			if token == "valid" {
				token = signToken(t, userID)
			}

			w := env.do("POST", "/v1/posts/hello/comments", token, tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}

			switch tt.wantStatus {
			case http.StatusUnauthorized:
				if calls != 0 {
					t.Errorf("Anonymous requests should not reach the service, got %d calls", calls)
				}
				if msg := decode(t, w)["error"]; msg == "invalid request body" {
					t.Errorf("Expected an authentication error, got %v", msg)
				}
			case http.StatusCreated:
				if gotIdentity == nil || gotIdentity.UserID != userID {
					t.Errorf("Expected identity %s, got %+v", userID, gotIdentity)
				}
				data := decode(t, w)["data"].([]interface{})
				if first := data[0].(map[string]interface{}); first["id"] != "c2" {
					t.Errorf("Expected newest comment first, got %v", first["id"])
				}
			case http.StatusBadRequest:
				if _, ok := tt.submitErr.(*service.FieldErrors); ok {
					if _, ok := decode(t, w)["details"]; !ok {
						t.Error("Expected field details")
					}
				}
			}
		})
	}
}

func TestAdminRoutes_RequireRole(t *testing.T) {
	admin, author, reader := uuid.NewString(), uuid.NewString(), uuid.NewString()

	tests := []struct {
		name       string
		user       string
		path       string
		wantStatus int
	}{
		{"anonymous stats", "", "/v1/admin/stats", http.StatusUnauthorized},
		{"reader stats", reader, "/v1/admin/stats", http.StatusForbidden},
		{"author stats", author, "/v1/admin/stats", http.StatusForbidden},
		{"admin stats", admin, "/v1/admin/stats", http.StatusOK},
		{"reader posts", reader, "/v1/admin/posts", http.StatusForbidden},
		{"author posts", author, "/v1/admin/posts", http.StatusOK},
		{"admin users", admin, "/v1/admin/users", http.StatusOK},
		{"author users", author, "/v1/admin/users", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestRouter(nil)
			env.roles.Roles[admin] = models.RoleAdmin
			env.roles.Roles[author] = models.RoleAuthor

			token := ""
			if tt.user != "" {
				token = signToken(t, tt.user)
			}

			w := env.do("GET", tt.path, token, nil)
			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestAdminPosts_PassActor(t *testing.T) {
	env := setupTestRouter(nil)
	author := uuid.NewString()
	env.roles.Roles[author] = models.RoleAuthor

	var gotActor service.Actor
	env.posts.CreateFunc = func(ctx context.Context, actor service.Actor, input *models.PostInput) (*models.Post, error) {
		gotActor = actor
		return &models.Post{ID: "p1", Title: input.Title, Slug: input.Slug, AuthorID: actor.UserID}, nil
	}
	env.posts.UpdateFunc = func(ctx context.Context, actor service.Actor, id string, input *models.PostInput) (*models.Post, error) {
		return nil, fmt.Errorf("%w: post belongs to another author", service.ErrForbidden)
	}
	env.posts.DeleteFunc = func(ctx context.Context, actor service.Actor, id string) error {
		return fmt.Errorf("%w: post %s", service.ErrNotFound, id)
	}

	token := signToken(t, author)
	input := models.PostInput{Title: "Launch", Slug: "launch", Content: "x", Status: "draft"}

	w := env.do("POST", "/v1/admin/posts", token, input)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", w.Code)
	}
	if gotActor.UserID != author || gotActor.Role != models.RoleAuthor {
		t.Errorf("Unexpected actor %+v", gotActor)
	}

	if w := env.do("PUT", "/v1/admin/posts/p2", token, input); w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", w.Code)
	}
	if w := env.do("DELETE", "/v1/admin/posts/p3", token, nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestAdminCategories(t *testing.T) {
	env := setupTestRouter(nil)
	admin := uuid.NewString()
	env.roles.Roles[admin] = models.RoleAdmin
	env.categories.CreateFunc = func(ctx context.Context, input *models.CategoryInput) (*models.Category, error) {
		if input.Slug == "news" {
			return nil, fmt.Errorf("%w: category slug %q already exists", service.ErrConflict, input.Slug)
		}
		return &models.Category{ID: "cat-1", Name: input.Name, Slug: input.Slug}, nil
	}
	token := signToken(t, admin)

	if w := env.do("POST", "/v1/admin/categories", token, models.CategoryInput{Name: "Security", Slug: "security"}); w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", w.Code)
	}
	if w := env.do("POST", "/v1/admin/categories", token, models.CategoryInput{Name: "News", Slug: "news"}); w.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", w.Code)
	}
	if w := env.do("DELETE", "/v1/admin/categories/cat-1", token, nil); w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}
}

func TestAssignRole(t *testing.T) {
	env := setupTestRouter(nil)
	admin, target := uuid.NewString(), uuid.NewString()
	env.roles.Roles[admin] = models.RoleAdmin
	token := signToken(t, admin)

	w := env.do("PUT", "/v1/admin/users/"+target+"/role", token, models.RoleRequest{Role: "author"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if env.roles.Roles[target] != models.RoleAuthor {
		t.Errorf("Expected role author, got %s", env.roles.Roles[target])
	}

	env.roles.AssignRoleFunc = func(ctx context.Context, userID, role string) error {
		return &service.FieldErrors{Errors: []validation.ValidationError{{Field: "role", Message: "invalid role"}}}
	}
	if w := env.do("PUT", "/v1/admin/users/"+target+"/role", token, models.RoleRequest{Role: "owner"}); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestStreamExport(t *testing.T) {
	env := setupTestRouter(nil)
	admin := uuid.NewString()
	env.roles.Roles[admin] = models.RoleAdmin
	token := signToken(t, admin)

	var gotFormat string
	env.export.StreamFunc = func(ctx context.Context, w http.ResponseWriter, resource, format string) error {
		gotFormat = format
		if resource != service.ResourcePosts {
			return &service.FieldErrors{Errors: []validation.ValidationError{{Field: "resource", Message: "unknown resource"}}}
		}
		w.Header().Set("Content-Type", "application/x-ndjson")
		w.Write([]byte("{\"id\":\"1\"}\n{\"id\":\"2\"}\n"))
		return nil
	}

	w := env.do("GET", "/v1/admin/export?resource=posts", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if gotFormat != service.FormatNDJSON {
		t.Errorf("Expected default format ndjson, got %s", gotFormat)
	}
	if lines := strings.Count(w.Body.String(), "\n"); lines != 2 {
		t.Errorf("Expected 2 lines, got %d", lines)
	}

	if w := env.do("GET", "/v1/admin/export?resource=users", token, nil); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	env := setupTestRouter(nil)

	req := httptest.NewRequest("OPTIONS", "/v1/posts", nil)
	req.Header.Set("Origin", "https://bytewave.example")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://bytewave.example" {
		t.Errorf("Expected allowed origin echoed, got %q", got)
	}

	req = httptest.NewRequest("GET", "/v1/categories", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Expected no allowed origin, got %q", got)
	}
}
