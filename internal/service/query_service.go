package service

import (
	"context"
	"strings"
	"time"

	"crafthub/internal/models"
	"crafthub/internal/observability"
	"crafthub/internal/repository"
)

// QueryService is the read side: posts with derived counts and the
// category catalog.
type QueryService struct {
	postRepo     repository.PostRepository
	categoryRepo repository.CategoryRepository
}

// PostQuery is the public filter for ListPosts.
type PostQuery struct {
	AuthorID      *uint
	CategoryID    *uint
	IsForSale     *bool
	IsFeatured    *bool
	Search        string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Page          Page
}

func NewQueryService(postRepo repository.PostRepository, categoryRepo repository.CategoryRepository) *QueryService {
	return &QueryService{
		postRepo:     postRepo,
		categoryRepo: categoryRepo,
	}
}

// GetPost returns nil, nil when the post does not exist.
func (s *QueryService) GetPost(ctx context.Context, viewer models.Caller, postID uint) (post *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "QueryService", "GetPost")
	defer func() { observability.EndSpan(span, err) }()

	post, err = s.postRepo.GetByID(ctx, postID, viewer.UserID)
	if models.IsNotFound(err) {
		return nil, nil
	}
	return post, err
}

// ListPosts returns matching posts newest first.
func (s *QueryService) ListPosts(ctx context.Context, viewer models.Caller, q PostQuery) (posts []*models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "QueryService", "ListPosts")
	defer func() { observability.EndSpan(span, err) }()

	if q.CreatedAfter != nil && q.CreatedBefore != nil && q.CreatedAfter.After(*q.CreatedBefore) {
		return nil, models.NewValidationError("created_after must not be later than created_before")
	}
	page := q.Page.normalize()
	return s.postRepo.List(ctx, repository.PostFilter{
		AuthorID:      q.AuthorID,
		CategoryID:    q.CategoryID,
		IsForSale:     q.IsForSale,
		IsFeatured:    q.IsFeatured,
		Search:        strings.TrimSpace(q.Search),
		CreatedAfter:  q.CreatedAfter,
		CreatedBefore: q.CreatedBefore,
		Limit:         page.Limit,
		Offset:        page.Offset,
	}, viewer.UserID)
}

func (s *QueryService) ListFeatured(ctx context.Context, viewer models.Caller, page Page) ([]*models.Post, error) {
	featured := true
	return s.ListPosts(ctx, viewer, PostQuery{IsFeatured: &featured, Page: page})
}

// ListByCategory lists a category's posts. Unknown categories are NotFound.
func (s *QueryService) ListByCategory(ctx context.Context, viewer models.Caller, categoryID uint, page Page) ([]*models.Post, error) {
	ok, err := s.categoryRepo.Exists(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewNotFoundError("Category", categoryID)
	}
	return s.ListPosts(ctx, viewer, PostQuery{CategoryID: &categoryID, Page: page})
}

func (s *QueryService) ListCategories(ctx context.Context) ([]models.CraftCategory, error) {
	return s.categoryRepo.List(ctx)
}

func (s *QueryService) GetCategory(ctx context.Context, id uint) (*models.CraftCategory, error) {
	return s.categoryRepo.GetByID(ctx, id)
}

// CreateCategory adds a catalog entry. Operator tooling only.
func (s *QueryService) CreateCategory(ctx context.Context, name, description string) (*models.CraftCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > 50 {
		return nil, models.NewValidationError("category name must be 1 to 50 characters")
	}
	if len([]rune(description)) > 200 {
		return nil, models.NewValidationError("category description must be at most 200 characters")
	}
	category := &models.CraftCategory{Name: name, Description: strings.TrimSpace(description)}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes a catalog entry; its posts become uncategorised.
func (s *QueryService) DeleteCategory(ctx context.Context, id uint) error {
	return s.categoryRepo.Delete(ctx, id)
}
