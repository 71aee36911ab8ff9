package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"crafthub/internal/cache"
	"crafthub/internal/config"
	"crafthub/internal/database"
	"crafthub/internal/middleware"
	"crafthub/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type testEnv struct {
	srv *Server
	app *fiber.App
	db  *gorm.DB
	rdb *redis.Client
	mr  *miniredis.Miniredis
}

// newTestEnv builds a server over in-memory sqlite and miniredis.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.OpenSQLite(database.MemoryDSN())
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Config{
		JWTSecret:    testSecret,
		Env:          "test",
		FeatureFlags: "realtime_events=on",
	}
	srv, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)
	t.Cleanup(func() {
		cache.SetClient(nil)
		_ = rdb.Close()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return &testEnv{srv: srv, app: srv.App(), db: db, rdb: rdb, mr: mr}
}

func (e *testEnv) user(t *testing.T, name string) (*models.User, string) {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com"}
	require.NoError(t, e.db.Create(u).Error)
	token, _, err := middleware.IssueToken(testSecret, u.ID, time.Hour)
	require.NoError(t, err)
	return u, token
}

type apiResponse struct {
	status int
	body   map[string]any
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) apiResponse {
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

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	out := apiResponse{status: resp.StatusCode, body: map[string]any{}}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out.body)
	}
	return out
}

func (r apiResponse) object(t *testing.T, key string) map[string]any {
	t.Helper()
	v, ok := r.body[key].(map[string]any)
	require.True(t, ok, "missing object %q in %v", key, r.body)
	return v
}

func (r apiResponse) list(t *testing.T, key string) []any {
	t.Helper()
	v, ok := r.body[key].([]any)
	require.True(t, ok, "missing list %q in %v", key, r.body)
	return v
}

func idOf(t *testing.T, obj map[string]any) uint {
	t.Helper()
	v, ok := obj["id"].(float64)
	require.True(t, ok)
	return uint(v)
}
