package service

import (
	"context"
	"log/slog"
	"strings"

	"crafthub/internal/cache"
	"crafthub/internal/middleware"
	"crafthub/internal/models"
	"crafthub/internal/repository"
	"crafthub/internal/validation"
)

type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput is a patch of the caller's editable profile fields.
type UpdateProfileInput struct {
	FirstName           *string `json:"first_name"`
	LastName            *string `json:"last_name"`
	Bio                 *string `json:"bio"`
	CraftSpecialization *string `json:"craft_specialization"`
	Location            *string `json:"location"`
	Website             *string `json:"website"`
	Avatar              *string `json:"avatar"`
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetProfile returns the user with follower, following and post counts.
// Anonymous views are cached; signed-in views carry is_following and are not.
func (s *UserService) GetProfile(ctx context.Context, viewer models.Caller, userID uint) (*models.UserProfile, error) {
	if viewer.Authenticated() {
		return s.userRepo.GetProfile(ctx, userID, viewer.UserID)
	}

	var profile models.UserProfile
	err := cache.Aside(ctx, cache.ProfileKey(userID), &profile, cache.ProfileTTL, func() error {
		loaded, err := s.userRepo.GetProfile(ctx, userID, 0)
		if err != nil {
			return err
		}
		profile = *loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Me returns the caller's own profile.
func (s *UserService) Me(ctx context.Context, caller models.Caller) (*models.UserProfile, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	return s.userRepo.GetProfile(ctx, caller.UserID, 0)
}

func (s *UserService) ListUsers(ctx context.Context, page Page) ([]models.User, error) {
	page = page.normalize()
	return s.userRepo.List(ctx, page.Limit, page.Offset)
}

func (s *UserService) UpdateProfile(ctx context.Context, caller models.Caller, in UpdateProfileInput) (*models.UserProfile, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetForUpdate(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	var p validation.Problems
	text := func(dst *string, field string, v *string, max int) {
		if v == nil {
			return
		}
		trimmed := strings.TrimSpace(*v)
		validation.MaxLen(&p, field, trimmed, max)
		*dst = trimmed
	}
	text(&user.FirstName, "first_name", in.FirstName, validation.NameMaxLen)
	text(&user.LastName, "last_name", in.LastName, validation.NameMaxLen)
	text(&user.Bio, "bio", in.Bio, validation.BioMaxLen)
	text(&user.CraftSpecialization, "craft_specialization", in.CraftSpecialization, validation.SpecializationMaxLen)
	text(&user.Location, "location", in.Location, validation.LocationMaxLen)
	if in.Website != nil {
		user.Website = strings.TrimSpace(*in.Website)
		validation.Website(&p, user.Website)
	}
	if in.Avatar != nil {
		user.Avatar = strings.TrimSpace(*in.Avatar)
		validation.OptionalURL(&p, "avatar", user.Avatar, validation.AvatarMaxLen)
	}
	if err := p.Err(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "profile updated", slog.Uint64("user_id", uint64(user.ID)))
	return s.userRepo.GetProfile(ctx, user.ID, 0)
}

// SetVerified toggles the verified-crafter badge. Operator tooling only.
func (s *UserService) SetVerified(ctx context.Context, username string, verified bool) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	user.IsVerifiedCrafter = verified
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
