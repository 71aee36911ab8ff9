package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"crafthub/internal/middleware"
	"crafthub/internal/models"
	"crafthub/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.NewUnauthenticatedError(), fiber.StatusUnauthorized},
		{models.NewNotFoundError("Post", 1), fiber.StatusNotFound},
		{models.NewValidationError("bad"), fiber.StatusBadRequest},
		{models.NewConflictError("dup"), fiber.StatusConflict},
		{models.NewInternalError(errors.New("db")), fiber.StatusInternalServerError},
		{errors.New("plain"), fiber.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", models.NewNotFoundError("User", 2)), fiber.StatusNotFound},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.user(t, "alice")

	expired, _, err := middleware.IssueToken(testSecret, 1, -time.Hour)
	require.NoError(t, err)
	foreign, _, err := middleware.IssueToken("some-other-secret-0123456789abcdefghij", 1, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"valid", token, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"expired", expired, http.StatusUnauthorized},
		{"wrong secret", foreign, http.StatusUnauthorized},
		{"garbage", "not.a.jwt", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodGet, "/api/users/me", tt.token, nil)
			assert.Equal(t, tt.status, resp.status)
			if tt.status == http.StatusUnauthorized {
				assert.Equal(t, false, resp.body["success"])
				assert.Equal(t, models.CodeUnauthenticated, resp.body["code"])
			}
		})
	}
}

func TestAuthRequired_RevokedToken(t *testing.T) {
	env := newTestEnv(t)
	u, _ := env.user(t, "alice")

	token, jti, err := middleware.IssueToken(testSecret, u.ID, time.Hour)
	require.NoError(t, err)
	require.NoError(t, env.mr.Set(middleware.RevokedTokenKey(jti), "1"))

	resp := env.do(t, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)
	assert.Equal(t, "Token has been revoked", resp.body["error"])

	// Optional-auth routes fall back to anonymous.
	resp = env.do(t, http.MethodGet, "/api/posts", token, nil)
	assert.Equal(t, http.StatusOK, resp.status)
}

func TestPostLifecycle(t *testing.T) {
	env := newTestEnv(t)
	_, alice := env.user(t, "alice")
	_, bob := env.user(t, "bob")

	created := env.do(t, http.MethodPost, "/api/posts", alice, map[string]any{
		"title":       "Fair isle mittens",
		"content":     "Two-colour stranded mittens in Shetland wool.",
		"is_for_sale": true,
		"images": []map[string]string{
			{"image_url": "https://img.example.com/mitten-1.jpg", "alt_text": "palm"},
			{"image_url": "https://img.example.com/mitten-2.jpg"},
		},
	})
	require.Equal(t, http.StatusCreated, created.status, created.body)
	post := created.object(t, "post")
	postID := idOf(t, post)
	assert.Len(t, post["images"], 2)
	path := fmt.Sprintf("/api/posts/%d", postID)

	// Non-owner edits look exactly like a missing post.
	foreign := env.do(t, http.MethodPut, path, bob, map[string]any{"title": "Stolen"})
	missing := env.do(t, http.MethodPut, "/api/posts/99999", bob, map[string]any{"title": "Stolen"})
	assert.Equal(t, http.StatusNotFound, foreign.status)
	assert.Equal(t, http.StatusNotFound, missing.status)
	assert.Equal(t, models.CodeNotFound, foreign.body["code"])

	liked := env.do(t, http.MethodPost, path+"/like", bob, nil)
	require.Equal(t, http.StatusOK, liked.status)
	assert.Equal(t, true, liked.body["liked"])
	assert.Equal(t, float64(1), liked.object(t, "post")["likes_count"])

	first := env.do(t, http.MethodPost, path+"/share", bob, nil)
	second := env.do(t, http.MethodPost, path+"/share", bob, nil)
	assert.Equal(t, http.StatusCreated, first.status)
	assert.Equal(t, http.StatusOK, second.status)
	assert.Equal(t, false, second.body["created"])
	assert.Equal(t, float64(1), second.object(t, "post")["shares_count"])

	comment := env.do(t, http.MethodPost, path+"/comments", bob, map[string]any{"content": "So warm!"})
	require.Equal(t, http.StatusCreated, comment.status)

	viewed := env.do(t, http.MethodGet, path, bob, nil)
	require.Equal(t, http.StatusOK, viewed.status)
	assert.Equal(t, true, viewed.object(t, "post")["is_liked"])
	anon := env.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, false, anon.object(t, "post")["is_liked"])
	assert.Equal(t, float64(1), anon.object(t, "post")["comments_count"])

	updated := env.do(t, http.MethodPut, path, alice, map[string]any{"title": "Fair isle mittens (sold)", "is_for_sale": false})
	require.Equal(t, http.StatusOK, updated.status)
	assert.Equal(t, "Fair isle mittens (sold)", updated.object(t, "post")["title"])
	assert.Len(t, updated.object(t, "post")["images"], 2)

	deleted := env.do(t, http.MethodDelete, path, alice, nil)
	require.Equal(t, http.StatusOK, deleted.status)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, path, "", nil).status)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, path+"/comments", "", nil).status)
}

func TestCreatePost_ValidationListsEveryProblem(t *testing.T) {
	env := newTestEnv(t)
	_, alice := env.user(t, "alice")

	resp := env.do(t, http.MethodPost, "/api/posts", alice, map[string]any{"title": "ab", "content": "short"})
	assert.Equal(t, http.StatusBadRequest, resp.status)
	assert.Equal(t, models.CodeValidation, resp.body["code"])
	assert.Len(t, resp.list(t, "errors"), 2)

	anon := env.do(t, http.MethodPost, "/api/posts", "", map[string]any{"title": "abc", "content": "0123456789"})
	assert.Equal(t, http.StatusUnauthorized, anon.status)

	ok := env.do(t, http.MethodPost, "/api/posts", alice, map[string]any{"title": "abc", "content": "0123456789"})
	assert.Equal(t, http.StatusCreated, ok.status)
}

func TestGetPosts_Filters(t *testing.T) {
	env := newTestEnv(t)
	alice, aliceToken := env.user(t, "alice")
	_, bobToken := env.user(t, "bob")

	for _, p := range []struct {
		token, title string
		sale         bool
	}{
		{aliceToken, "Pine birdhouse", true},
		{bobToken, "Raku bowl", false},
		{aliceToken, "Cedar planter", false},
	} {
		resp := env.do(t, http.MethodPost, "/api/posts", p.token, map[string]any{
			"title": p.title, "content": p.title + " built this spring.", "is_for_sale": p.sale,
		})
		require.Equal(t, http.StatusCreated, resp.status)
	}

	byAuthor := env.do(t, http.MethodGet, fmt.Sprintf("/api/posts?author=%d", alice.ID), "", nil)
	require.Equal(t, http.StatusOK, byAuthor.status)
	assert.Len(t, byAuthor.list(t, "posts"), 2)

	forSale := env.do(t, http.MethodGet, "/api/posts?for_sale=true", "", nil)
	require.Len(t, forSale.list(t, "posts"), 1)

	search := env.do(t, http.MethodGet, "/api/posts?q=RAKU", "", nil)
	require.Len(t, search.list(t, "posts"), 1)

	today := time.Now().UTC()
	sameDay := env.do(t, http.MethodGet, "/api/posts?created_after="+today.Format(time.DateOnly)+"&created_before="+today.Format(time.DateOnly), "", nil)
	require.Equal(t, http.StatusOK, sameDay.status)
	assert.Len(t, sameDay.list(t, "posts"), 3)

	beforeToday := env.do(t, http.MethodGet, "/api/posts?created_before="+today.AddDate(0, 0, -1).Format(time.DateOnly), "", nil)
	require.Equal(t, http.StatusOK, beforeToday.status)
	assert.Empty(t, beforeToday.body["posts"])

	bad := env.do(t, http.MethodGet, "/api/posts?author=x&for_sale=maybe&created_after=yesterday", "", nil)
	assert.Equal(t, http.StatusBadRequest, bad.status)
	assert.Len(t, bad.list(t, "errors"), 3)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/posts/abc", "", nil).status)
}

func TestCategories(t *testing.T) {
	env := newTestEnv(t)
	_, alice := env.user(t, "alice")
	cat := &models.CraftCategory{Name: "Pottery"}
	require.NoError(t, env.db.Create(cat).Error)

	resp := env.do(t, http.MethodPost, "/api/posts", alice, map[string]any{
		"title": "Celadon vase", "content": "Wheel thrown, reduction fired.", "craft_category_id": cat.ID,
	})
	require.Equal(t, http.StatusCreated, resp.status)

	list := env.do(t, http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, list.status)
	assert.Len(t, list.list(t, "categories"), 1)

	posts := env.do(t, http.MethodGet, fmt.Sprintf("/api/categories/%d/posts", cat.ID), "", nil)
	require.Equal(t, http.StatusOK, posts.status)
	assert.Len(t, posts.list(t, "posts"), 1)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/categories/999/posts", "", nil).status)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/categories/999", "", nil).status)

	bad := env.do(t, http.MethodPost, "/api/posts", alice, map[string]any{
		"title": "Lost vase", "content": "Category does not exist.", "craft_category_id": 999,
	})
	assert.Equal(t, http.StatusBadRequest, bad.status)
}

func TestFollowAndProfile(t *testing.T) {
	env := newTestEnv(t)
	alice, aliceToken := env.user(t, "alice")
	_, bobToken := env.user(t, "bob")
	followPath := fmt.Sprintf("/api/users/%d/follow", alice.ID)

	self := env.do(t, http.MethodPost, followPath, aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, self.status)

	for i := 0; i < 2; i++ {
		resp := env.do(t, http.MethodPost, followPath, bobToken, nil)
		require.Equal(t, http.StatusOK, resp.status)
		assert.Equal(t, i == 0, resp.object(t, "follow")["changed"])
	}

	profile := env.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", alice.ID), bobToken, nil)
	require.Equal(t, http.StatusOK, profile.status)
	user := profile.object(t, "user")
	assert.Equal(t, float64(1), user["followers_count"])
	assert.Equal(t, true, user["is_following"])

	followers := env.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d/followers", alice.ID), "", nil)
	assert.Len(t, followers.list(t, "users"), 1)

	unfollow := env.do(t, http.MethodDelete, followPath, bobToken, nil)
	assert.Equal(t, false, unfollow.object(t, "follow")["following"])

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/api/users/999/follow", bobToken, nil).status)
}

func TestUpdateMyProfile(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.user(t, "alice")

	resp := env.do(t, http.MethodPut, "/api/users/me", token, map[string]any{
		"bio":                  "Spinner and dyer",
		"craft_specialization": "Spinning",
	})
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "Spinner and dyer", resp.object(t, "user")["bio"])

	bad := env.do(t, http.MethodPut, "/api/users/me", token, map[string]any{"website": "ftp://nope"})
	assert.Equal(t, http.StatusBadRequest, bad.status)
}

func TestComments_OwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	_, alice := env.user(t, "alice")
	_, bob := env.user(t, "bob")

	post := env.do(t, http.MethodPost, "/api/posts", alice, map[string]any{"title": "Linen apron", "content": "Cross-back linen apron."})
	postID := idOf(t, post.object(t, "post"))
	comment := env.do(t, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", postID), bob, map[string]any{"content": "Pattern?"})
	commentPath := fmt.Sprintf("/api/comments/%d", idOf(t, comment.object(t, "comment")))

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPut, commentPath, alice, map[string]any{"content": "x"}).status)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, commentPath, alice, nil).status)

	edited := env.do(t, http.MethodPut, commentPath, bob, map[string]any{"content": "Pattern please?"})
	require.Equal(t, http.StatusOK, edited.status)
	assert.Equal(t, "Pattern please?", edited.object(t, "comment")["content"])

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, commentPath, bob, nil).status)
	list := env.do(t, http.MethodGet, fmt.Sprintf("/api/posts/%d/comments", postID), "", nil)
	assert.Empty(t, list.list(t, "comments"))
}

func TestRealtimeEvents(t *testing.T) {
	env := newTestEnv(t)
	alice, aliceToken := env.user(t, "alice")
	_, bobToken := env.user(t, "bob")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sub := env.rdb.Subscribe(ctx, notifications.UserChannel(alice.ID), notifications.BroadcastChannel)
	defer func() { _ = sub.Close() }()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	next := func() notifications.Event {
		t.Helper()
		msg, err := sub.ReceiveMessage(ctx)
		require.NoError(t, err)
		var ev notifications.Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		return ev
	}

	post := env.do(t, http.MethodPost, "/api/posts", aliceToken, map[string]any{"title": "Oak bench", "content": "Drawbored mortise and tenon."})
	require.Equal(t, http.StatusCreated, post.status)
	assert.Equal(t, EventPostCreated, next().Type)

	path := fmt.Sprintf("/api/posts/%d", idOf(t, post.object(t, "post")))
	// Authors acting on their own post are not notified.
	env.do(t, http.MethodPost, path+"/like", aliceToken, nil)
	env.do(t, http.MethodPost, path+"/like", bobToken, nil)
	assert.Equal(t, EventPostLiked, next().Type)

	env.do(t, http.MethodPost, fmt.Sprintf("/api/users/%d/follow", alice.ID), bobToken, nil)
	assert.Equal(t, EventUserFollowed, next().Type)
}

func TestRealtimeEvents_FlagOff(t *testing.T) {
	env := newTestEnv(t)
	env.srv.featureFlags = nil
	_, token := env.user(t, "alice")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	sub := env.rdb.Subscribe(ctx, notifications.BroadcastChannel)
	defer func() { _ = sub.Close() }()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	resp := env.do(t, http.MethodPost, "/api/posts", token, map[string]any{"title": "Quiet post", "content": "Nobody hears about this."})
	require.Equal(t, http.StatusCreated, resp.status)

	_, err = sub.ReceiveMessage(ctx)
	assert.Error(t, err)
}

func TestHealthAndFlags(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health/live", "", nil).status)
	ready := env.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, ready.status)
	assert.Equal(t, "healthy", ready.body["status"])

	env.mr.Close()
	notReady := env.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, notReady.status)

	flags := env.do(t, http.MethodGet, "/api/feature-flags", "", nil)
	assert.Equal(t, true, flags.object(t, "flags")["realtime_events"])
}

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t)
	req, err := http.NewRequest(http.MethodGet, "/health/live", nil)
	require.NoError(t, err)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.NotEmpty(t, resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Frame-Options"))
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}
