package service

import (
	"context"
	"errors"
	"testing"

	"crafthub/internal/models"
	"crafthub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn      func(context.Context, *models.Post) error
	getByIDFn     func(context.Context, uint, uint) (*models.Post, error)
	getOwnedFn    func(context.Context, uint, uint) (*models.Post, error)
	existsFn      func(context.Context, uint) (bool, error)
	listFn        func(context.Context, repository.PostFilter, uint) ([]*models.Post, error)
	updateFn      func(context.Context, *models.Post, []models.PostImage) error
	deleteFn      func(context.Context, uint) error
	setFeaturedFn func(context.Context, uint, bool) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, viewerID)
}
func (s *postRepoStub) GetOwned(ctx context.Context, id, authorID uint) (*models.Post, error) {
	return s.getOwnedFn(ctx, id, authorID)
}
func (s *postRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, f repository.PostFilter, viewerID uint) ([]*models.Post, error) {
	return s.listFn(ctx, f, viewerID)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post, images []models.PostImage) error {
	return s.updateFn(ctx, post, images)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) SetFeatured(ctx context.Context, id uint, featured bool) error {
	return s.setFeaturedFn(ctx, id, featured)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error {
			p.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id}, nil
		},
		getOwnedFn: func(_ context.Context, id, authorID uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: authorID}, nil
		},
		existsFn:      func(context.Context, uint) (bool, error) { return true, nil },
		listFn:        func(context.Context, repository.PostFilter, uint) ([]*models.Post, error) { return nil, nil },
		updateFn:      func(context.Context, *models.Post, []models.PostImage) error { return nil },
		deleteFn:      func(context.Context, uint) error { return nil },
		setFeaturedFn: func(context.Context, uint, bool) error { return nil },
	}
}

// categoryRepoStub is a stub for repository.CategoryRepository.
type categoryRepoStub struct {
	listFn    func(context.Context) ([]models.CraftCategory, error)
	getByIDFn func(context.Context, uint) (*models.CraftCategory, error)
	existsFn  func(context.Context, uint) (bool, error)
	createFn  func(context.Context, *models.CraftCategory) error
	deleteFn  func(context.Context, uint) error
}

func (s *categoryRepoStub) List(ctx context.Context) ([]models.CraftCategory, error) {
	return s.listFn(ctx)
}
func (s *categoryRepoStub) GetByID(ctx context.Context, id uint) (*models.CraftCategory, error) {
	return s.getByIDFn(ctx, id)
}
func (s *categoryRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *categoryRepoStub) Create(ctx context.Context, c *models.CraftCategory) error {
	return s.createFn(ctx, c)
}
func (s *categoryRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCategoryRepo() *categoryRepoStub {
	return &categoryRepoStub{
		listFn: func(context.Context) ([]models.CraftCategory, error) { return nil, nil },
		getByIDFn: func(_ context.Context, id uint) (*models.CraftCategory, error) {
			return &models.CraftCategory{ID: id}, nil
		},
		existsFn: func(context.Context, uint) (bool, error) { return true, nil },
		createFn: func(context.Context, *models.CraftCategory) error { return nil },
		deleteFn: func(context.Context, uint) error { return nil },
	}
}

// interactionRepoStub is a stub for repository.InteractionRepository.
type interactionRepoStub struct {
	toggleLikeFn func(context.Context, uint, uint) (bool, error)
	removeLikeFn func(context.Context, uint, uint) (bool, error)
	shareFn      func(context.Context, uint, uint) (bool, error)
}

func (s *interactionRepoStub) ToggleLike(ctx context.Context, userID, postID uint) (bool, error) {
	return s.toggleLikeFn(ctx, userID, postID)
}
func (s *interactionRepoStub) RemoveLike(ctx context.Context, userID, postID uint) (bool, error) {
	return s.removeLikeFn(ctx, userID, postID)
}
func (s *interactionRepoStub) Share(ctx context.Context, userID, postID uint) (bool, error) {
	return s.shareFn(ctx, userID, postID)
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn        func(context.Context, *models.Comment) error
	getByIDFn       func(context.Context, uint) (*models.Comment, error)
	listByPostFn    func(context.Context, uint, int, int) ([]*models.Comment, error)
	updateContentFn func(context.Context, *models.Comment, string) error
	deleteFn        func(context.Context, *models.Comment) error
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID, limit, offset)
}
func (s *commentRepoStub) UpdateContent(ctx context.Context, c *models.Comment, content string) error {
	return s.updateContentFn(ctx, c, content)
}
func (s *commentRepoStub) Delete(ctx context.Context, c *models.Comment) error {
	return s.deleteFn(ctx, c)
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getForUpdateFn  func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	existsFn        func(context.Context, uint) (bool, error)
	getProfileFn    func(context.Context, uint, uint) (*models.UserProfile, error)
	listFn          func(context.Context, int, int) ([]models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetForUpdate(ctx context.Context, id uint) (*models.User, error) {
	return s.getForUpdateFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *userRepoStub) GetProfile(ctx context.Context, id, viewerID uint) (*models.UserProfile, error) {
	return s.getProfileFn(ctx, id, viewerID)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) Create(ctx context.Context, u *models.User) error {
	return s.createFn(ctx, u)
}
func (s *userRepoStub) Update(ctx context.Context, u *models.User) error {
	return s.updateFn(ctx, u)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "maker"}, nil
		},
		getForUpdateFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "maker"}, nil
		},
		getByUsernameFn: func(context.Context, string) (*models.User, error) { return nil, nil },
		existsFn:        func(context.Context, uint) (bool, error) { return true, nil },
		getProfileFn: func(_ context.Context, id, _ uint) (*models.UserProfile, error) {
			return &models.UserProfile{User: models.User{ID: id}}, nil
		},
		listFn:   func(context.Context, int, int) ([]models.User, error) { return nil, nil },
		createFn: func(context.Context, *models.User) error { return nil },
		updateFn: func(context.Context, *models.User) error { return nil },
	}
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	followFn        func(context.Context, uint, uint) (bool, error)
	unfollowFn      func(context.Context, uint, uint) (bool, error)
	isFollowingFn   func(context.Context, uint, uint) (bool, error)
	listFollowersFn func(context.Context, uint, int, int) ([]models.User, error)
	listFollowingFn func(context.Context, uint, int, int) ([]models.User, error)
}

func (s *followRepoStub) Follow(ctx context.Context, a, b uint) (bool, error) {
	return s.followFn(ctx, a, b)
}
func (s *followRepoStub) Unfollow(ctx context.Context, a, b uint) (bool, error) {
	return s.unfollowFn(ctx, a, b)
}
func (s *followRepoStub) IsFollowing(ctx context.Context, a, b uint) (bool, error) {
	return s.isFollowingFn(ctx, a, b)
}
func (s *followRepoStub) ListFollowers(ctx context.Context, id uint, limit, offset int) ([]models.User, error) {
	return s.listFollowersFn(ctx, id, limit, offset)
}
func (s *followRepoStub) ListFollowing(ctx context.Context, id uint, limit, offset int) ([]models.User, error) {
	return s.listFollowingFn(ctx, id, limit, offset)
}

func assertCode(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) *models.AppError {
	t.Helper()
	return assertCode(t, err, models.CodeValidation)
}

func strPtr(s string) *string { return &s }

func uintPtr(v uint) *uint { return &v }

func boolPtr(v bool) *bool { return &v }
