package service

import (
	"context"

	"crafthub/internal/models"
	"crafthub/internal/observability"
	"crafthub/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// InteractionService records likes and shares against posts. Each call
// returns the post as the caller now sees it.
type InteractionService struct {
	postRepo        repository.PostRepository
	interactionRepo repository.InteractionRepository
}

func NewInteractionService(postRepo repository.PostRepository, interactionRepo repository.InteractionRepository) *InteractionService {
	return &InteractionService{
		postRepo:        postRepo,
		interactionRepo: interactionRepo,
	}
}

// ToggleLike likes the post when the caller has not liked it and unlikes it
// otherwise.
func (s *InteractionService) ToggleLike(ctx context.Context, caller models.Caller, postID uint) (res *models.LikeResult, err error) {
	ctx, span := observability.StartSpan(ctx, "InteractionService", "ToggleLike",
		attribute.Int64("post.id", int64(postID)))
	defer func() { observability.EndSpan(span, err) }()

	if err := s.gate(ctx, caller, postID); err != nil {
		return nil, err
	}
	liked, err := s.interactionRepo.ToggleLike(ctx, caller.UserID, postID)
	if err != nil {
		return nil, err
	}
	if liked {
		observability.RecordInteraction("like", observability.ResultCreated)
	} else {
		observability.RecordInteraction("like", observability.ResultRemoved)
	}

	post, err := s.postRepo.GetByID(ctx, postID, caller.UserID)
	if err != nil {
		return nil, err
	}
	return &models.LikeResult{Liked: liked, Post: post}, nil
}

// RemoveLike is the idempotent unlike. Removing a like that does not exist
// succeeds with Removed=false.
func (s *InteractionService) RemoveLike(ctx context.Context, caller models.Caller, postID uint) (res *models.RemoveLikeResult, err error) {
	ctx, span := observability.StartSpan(ctx, "InteractionService", "RemoveLike",
		attribute.Int64("post.id", int64(postID)))
	defer func() { observability.EndSpan(span, err) }()

	if err := s.gate(ctx, caller, postID); err != nil {
		return nil, err
	}
	removed, err := s.interactionRepo.RemoveLike(ctx, caller.UserID, postID)
	if err != nil {
		return nil, err
	}
	observability.RecordInteraction("unlike", resultOf(removed, observability.ResultRemoved))

	post, err := s.postRepo.GetByID(ctx, postID, caller.UserID)
	if err != nil {
		return nil, err
	}
	return &models.RemoveLikeResult{Removed: removed, Post: post}, nil
}

// SharePost records a share. Sharing again is a successful no-op.
func (s *InteractionService) SharePost(ctx context.Context, caller models.Caller, postID uint) (res *models.ShareResult, err error) {
	ctx, span := observability.StartSpan(ctx, "InteractionService", "SharePost",
		attribute.Int64("post.id", int64(postID)))
	defer func() { observability.EndSpan(span, err) }()

	if err := s.gate(ctx, caller, postID); err != nil {
		return nil, err
	}
	created, err := s.interactionRepo.Share(ctx, caller.UserID, postID)
	if err != nil {
		return nil, err
	}
	observability.RecordInteraction("share", resultOf(created, observability.ResultCreated))

	post, err := s.postRepo.GetByID(ctx, postID, caller.UserID)
	if err != nil {
		return nil, err
	}
	return &models.ShareResult{Created: created, Post: post}, nil
}

func (s *InteractionService) gate(ctx context.Context, caller models.Caller, postID uint) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	return ensurePost(ctx, s.postRepo, postID)
}

func ensurePost(ctx context.Context, posts repository.PostRepository, postID uint) error {
	ok, err := posts.Exists(ctx, postID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Post", postID)
	}
	return nil
}

func resultOf(changed bool, ifChanged string) string {
	if changed {
		return ifChanged
	}
	return observability.ResultNoop
}
