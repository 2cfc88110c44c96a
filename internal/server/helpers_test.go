package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"agora/internal/auth"
	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/featureflags"
	"agora/internal/repository"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestServer creates a Server over an in-memory sqlite database and a
// Fiber app with only the API routes mounted.
func setupTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{Port: "0", Env: "test"}

	server := &Server{
		config:       cfg,
		db:           db,
		tokens:       auth.NewTokenStore(),
		featureFlags: featureflags.NewManager(cfg.FeatureFlags),
		userRepo:     repository.NewUserRepository(db),
		postRepo:     repository.NewPostRepository(db),
		commentRepo:  repository.NewCommentRepository(db),
	}
	server.sessionService = service.NewSessionService(server.userRepo, server.tokens, nil)
	server.userService = service.NewUserService(server.userRepo)
	server.postService = service.NewPostService(server.postRepo, server.userRepo, server.sessionService.ResolveCaller)
	server.commentService = service.NewCommentService(server.commentRepo, server.postRepo, server.userRepo)

	app := fiber.New()
	server.SetupRoutes(app)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return server, app
}

// doRequest performs a JSON request against the test app and decodes the
// response body into a generic map.
func doRequest(t *testing.T, app *fiber.App, method, path string, body any, token string) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	var decoded map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

// listRequest performs a GET expecting a 200 with a JSON array body.
func listRequest(t *testing.T, app *fiber.App, path string) []any {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var items []any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	_ = resp.Body.Close()
	return items
}

// registerAndLogin creates a user and returns its id and a session token.
func registerAndLogin(t *testing.T, app *fiber.App, nickname, password string) (uint, string) {
	t.Helper()

	resp, body := doRequest(t, app, fiber.MethodPost, "/api/users", map[string]string{
		"nickname": nickname,
		"password": password,
	}, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, "register failed: %v", body)
	userID := uint(body["id"].(float64))

	resp, body = doRequest(t, app, fiber.MethodPost, "/api/users/login", map[string]any{
		"id":       userID,
		"password": password,
	}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, "login failed: %v", body)
	token, ok := body["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)

	return userID, token
}

func TestHumanizeParam(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"id", "ID"},
		{"userId", "user ID"},
		{"commentId", "comment ID"},
		{"slug", "slug"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, humanizeParam(tt.in))
	}
}

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	app.Get("/p", func(c *fiber.Ctx) error {
		page := parsePagination(c, 20)
		return c.JSON(page)
	})

	tests := []struct {
		query      string
		wantLimit  float64
		wantOffset float64
	}{
		{"", 20, 0},
		{"?limit=5&offset=10", 5, 10},
		{"?limit=-1", 20, 0},
		{"?limit=500", 100, 0},
		{"?offset=-3", 20, 0},
	}
	for _, tt := range tests {
		resp, body := doRequest(t, app, fiber.MethodGet, "/p"+tt.query, nil, "")
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, tt.wantLimit, body["Limit"], "query %q", tt.query)
		assert.Equal(t, tt.wantOffset, body["Offset"], "query %q", tt.query)
	}
}

func TestBearerToken(t *testing.T) {
	app := fiber.New()
	app.Get("/t", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"token": bearerToken(c)})
	})

	req := httptest.NewRequest(fiber.MethodGet, "/t", nil)
	req.Header.Set("Authorization", "Basic abc123")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "", body["token"], "non-bearer schemes are ignored")

	_, body2 := doRequest(t, app, fiber.MethodGet, "/t", nil, "xyz")
	assert.Equal(t, "xyz", body2["token"])
}
