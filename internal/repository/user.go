package repository

import (
	"context"
	"errors"

	"crafthub/internal/cache"
	"crafthub/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetForUpdate(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Exists(ctx context.Context, id uint) (bool, error)
	GetProfile(ctx context.Context, id, viewerID uint) (*models.UserProfile, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			return lookupError(err, "User", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetForUpdate reads the row straight from the database. Cached copies drop
// the password hash, so anything that is written back must come from here.
func (r *userRepository) GetForUpdate(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, lookupError(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// GetProfile loads the user with follower, following and post counts in one
// query. IsFollowing is relative to viewerID and false when it is zero.
func (r *userRepository) GetProfile(ctx context.Context, id, viewerID uint) (*models.UserProfile, error) {
	sel := "users.*, " +
		"(SELECT COUNT(*) FROM follows WHERE follows.following_id = users.id) AS followers_count, " +
		"(SELECT COUNT(*) FROM follows WHERE follows.follower_id = users.id) AS following_count, " +
		"(SELECT COUNT(*) FROM posts WHERE posts.user_id = users.id) AS posts_count"

	q := r.db.WithContext(ctx).Model(&models.User{})
	if viewerID != 0 {
		q = q.Select(sel+", EXISTS(SELECT 1 FROM follows WHERE follows.follower_id = ? AND follows.following_id = users.id) AS is_following", viewerID)
	} else {
		q = q.Select(sel + ", false AS is_following")
	}

	var profile models.UserProfile
	res := q.Where("users.id = ?", id).Limit(1).Scan(&profile)
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("User", id)
	}
	return &profile, nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	limit, offset = clampPage(limit, offset)
	var users []models.User
	if err := r.db.WithContext(ctx).
		Order("username ASC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("user already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// profileColumns are the columns Update writes. Credentials and identity
// have their own paths.
var profileColumns = []string{
	"first_name", "last_name", "bio", "craft_specialization",
	"location", "website", "avatar", "is_verified_crafter", "updated_at",
}

// Update writes the user's profile columns and evicts every cached view that
// embeds the user: the user row, the profile and the anonymous post views
// carrying the user as author.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(user).Select(profileColumns).Updates(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)

	if cache.GetClient() == nil {
		return nil
	}
	var postIDs []uint
	if err := db.Model(&models.Post{}).Where("user_id = ?", user.ID).Pluck("id", &postIDs).Error; err != nil {
		return models.NewInternalError(err)
	}
	keys := make([]string, 0, len(postIDs))
	for _, id := range postIDs {
		keys = append(keys, cache.PostKey(id))
	}
	cache.Invalidate(ctx, keys...)
	return nil
}
