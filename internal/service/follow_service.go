package service

import (
	"context"

	"crafthub/internal/models"
	"crafthub/internal/observability"
	"crafthub/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// FollowService maintains the directed follow graph between users.
type FollowService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

func NewFollowService(userRepo repository.UserRepository, followRepo repository.FollowRepository) *FollowService {
	return &FollowService{
		userRepo:   userRepo,
		followRepo: followRepo,
	}
}

// Follow makes the caller follow followeeID. Following twice is a no-op and
// following yourself is rejected.
func (s *FollowService) Follow(ctx context.Context, caller models.Caller, followeeID uint) (res *models.FollowResult, err error) {
	ctx, span := observability.StartSpan(ctx, "FollowService", "Follow",
		attribute.Int64("followee.id", int64(followeeID)))
	defer func() { observability.EndSpan(span, err) }()

	if err := s.gate(ctx, caller, followeeID); err != nil {
		return nil, err
	}
	if caller.UserID == followeeID {
		return nil, models.NewValidationError("you cannot follow yourself")
	}

	created, err := s.followRepo.Follow(ctx, caller.UserID, followeeID)
	if err != nil {
		return nil, err
	}
	observability.RecordInteraction("follow", resultOf(created, observability.ResultCreated))
	return &models.FollowResult{FolloweeID: followeeID, Following: true, Changed: created}, nil
}

// Unfollow removes the edge if present.
func (s *FollowService) Unfollow(ctx context.Context, caller models.Caller, followeeID uint) (res *models.FollowResult, err error) {
	ctx, span := observability.StartSpan(ctx, "FollowService", "Unfollow",
		attribute.Int64("followee.id", int64(followeeID)))
	defer func() { observability.EndSpan(span, err) }()

	if err := s.gate(ctx, caller, followeeID); err != nil {
		return nil, err
	}
	removed, err := s.followRepo.Unfollow(ctx, caller.UserID, followeeID)
	if err != nil {
		return nil, err
	}
	observability.RecordInteraction("unfollow", resultOf(removed, observability.ResultRemoved))
	return &models.FollowResult{FolloweeID: followeeID, Following: false, Changed: removed}, nil
}

func (s *FollowService) ListFollowers(ctx context.Context, userID uint, page Page) ([]models.User, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	page = page.normalize()
	return s.followRepo.ListFollowers(ctx, userID, page.Limit, page.Offset)
}

func (s *FollowService) ListFollowing(ctx context.Context, userID uint, page Page) ([]models.User, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	page = page.normalize()
	return s.followRepo.ListFollowing(ctx, userID, page.Limit, page.Offset)
}

func (s *FollowService) gate(ctx context.Context, caller models.Caller, followeeID uint) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	return s.ensureUser(ctx, followeeID)
}

func (s *FollowService) ensureUser(ctx context.Context, id uint) error {
	ok, err := s.userRepo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("User", id)
	}
	return nil
}
