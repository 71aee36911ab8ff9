package server

import (
	"context"
	"log/slog"
	"time"

	"crafthub/internal/featureflags"
	"crafthub/internal/middleware"
	"crafthub/internal/models"
	"crafthub/internal/notifications"
	"crafthub/internal/observability"
)

// Event types published after successful mutations.
const (
	EventPostCreated   = "post_created"
	EventPostLiked     = "post_liked"
	EventPostCommented = "post_commented"
	EventPostShared    = "post_shared"
	EventUserFollowed  = "user_followed"
)

const publishTimeout = 2 * time.Second

func (s *Server) eventsEnabled(actorID uint) bool {
	return s.notifier.Enabled() && s.featureFlags.Enabled(featureflags.RealtimeEvents, actorID)
}

// publish delivers ev to userID, or to everyone when userID is 0. Failures
// are logged and otherwise ignored.
func (s *Server) publish(ctx context.Context, userID uint, eventType string, payload map[string]any) {
	// Detach from request cancellation but keep the request's log values.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	ev := notifications.Event{Type: eventType, Payload: payload}
	var err error
	if userID == 0 {
		err = s.notifier.PublishBroadcast(ctx, ev)
	} else {
		err = s.notifier.PublishUser(ctx, userID, ev)
	}
	if err != nil {
		middleware.Logger.WarnContext(ctx, "event publish failed",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
		return
	}
	observability.EventsPublished.WithLabelValues(eventType).Inc()
}

func (s *Server) publishPostCreated(ctx context.Context, post *models.Post) {
	if post == nil || !s.eventsEnabled(post.UserID) {
		return
	}
	s.publish(ctx, 0, EventPostCreated, map[string]any{
		"post_id":    post.ID,
		"author_id":  post.UserID,
		"title":      post.Title,
		"created_at": post.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
}

// publishToAuthor notifies the post's author about someone else's action.
func (s *Server) publishToAuthor(ctx context.Context, post *models.Post, actorID uint, eventType string, extra map[string]any) {
	if post == nil || post.UserID == actorID || !s.eventsEnabled(actorID) {
		return
	}
	payload := map[string]any{
		"post_id":  post.ID,
		"actor_id": actorID,
	}
	for k, v := range extra {
		payload[k] = v
	}
	s.publish(ctx, post.UserID, eventType, payload)
}

func (s *Server) publishCommentCreated(ctx context.Context, comment *models.Comment) {
	if comment == nil || !s.eventsEnabled(comment.UserID) {
		return
	}
	post, err := s.queryService.GetPost(ctx, models.Anonymous, comment.PostID)
	if err != nil || post == nil {
		return
	}
	s.publishToAuthor(ctx, post, comment.UserID, EventPostCommented, map[string]any{
		"comment_id": comment.ID,
		"author":     userSummary(comment.Author),
	})
}

func (s *Server) publishFollowed(ctx context.Context, followerID, followeeID uint) {
	if !s.eventsEnabled(followerID) {
		return
	}
	s.publish(ctx, followeeID, EventUserFollowed, map[string]any{
		"follower_id": followerID,
	})
}

func userSummary(user *models.User) map[string]any {
	if user == nil {
		return nil
	}
	return map[string]any{
		"id":       user.ID,
		"username": user.Username,
		"avatar":   user.Avatar,
	}
}
