package service

import (
	"context"
	"log/slog"

	"crafthub/internal/cache"
	"crafthub/internal/middleware"
	"crafthub/internal/models"
	"crafthub/internal/observability"
	"crafthub/internal/repository"
	"crafthub/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// PostService is the only path that creates, edits or deletes posts.
type PostService struct {
	postRepo     repository.PostRepository
	categoryRepo repository.CategoryRepository
}

// ImageInput is one image reference in request order.
type ImageInput struct {
	ImageURL string `json:"image_url"`
	AltText  string `json:"alt_text"`
}

type CreatePostInput struct {
	Title           string       `json:"title"`
	Content         string       `json:"content"`
	CraftCategoryID *uint        `json:"craft_category_id"`
	MaterialsUsed   string       `json:"materials_used"`
	TimeToComplete  string       `json:"time_to_complete"`
	PriceRange      string       `json:"price_range"`
	IsForSale       bool         `json:"is_for_sale"`
	IsFeatured      bool         `json:"is_featured"`
	Images          []ImageInput `json:"images"`
}

// UpdatePostInput is a patch: nil fields are left alone. A CraftCategoryID
// of 0 clears the category; a non-nil Images replaces the whole list.
type UpdatePostInput struct {
	Title           *string       `json:"title"`
	Content         *string       `json:"content"`
	CraftCategoryID *uint         `json:"craft_category_id"`
	MaterialsUsed   *string       `json:"materials_used"`
	TimeToComplete  *string       `json:"time_to_complete"`
	PriceRange      *string       `json:"price_range"`
	IsForSale       *bool         `json:"is_for_sale"`
	IsFeatured      *bool         `json:"is_featured"`
	Images          *[]ImageInput `json:"images"`
}

func NewPostService(postRepo repository.PostRepository, categoryRepo repository.CategoryRepository) *PostService {
	return &PostService{
		postRepo:     postRepo,
		categoryRepo: categoryRepo,
	}
}

func (s *PostService) CreatePost(ctx context.Context, caller models.Caller, in CreatePostInput) (post *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "PostService", "CreatePost")
	defer func() {
		observability.EndSpan(span, err)
		observability.RecordPostMutation("create", err)
	}()

	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	var p validation.Problems
	title := validation.Title(&p, in.Title)
	content := validation.Content(&p, in.Content)
	validation.PostDetails(&p, in.MaterialsUsed, in.TimeToComplete, in.PriceRange)
	images := checkImages(&p, in.Images)
	if in.CraftCategoryID != nil {
		if err := s.checkCategory(ctx, &p, *in.CraftCategoryID); err != nil {
			return nil, err
		}
	}
	if err := p.Err(); err != nil {
		return nil, err
	}

	post = &models.Post{
		UserID:          caller.UserID,
		Title:           title,
		Content:         content,
		CraftCategoryID: in.CraftCategoryID,
		MaterialsUsed:   in.MaterialsUsed,
		TimeToComplete:  in.TimeToComplete,
		PriceRange:      in.PriceRange,
		IsForSale:       in.IsForSale,
		IsFeatured:      in.IsFeatured,
		Images:          images,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.ProfileKey(caller.UserID))

	middleware.Logger.InfoContext(ctx, "post created",
		slog.Uint64("post_id", uint64(post.ID)),
		slog.Int("images", len(images)),
	)
	return s.postRepo.GetByID(ctx, post.ID, caller.UserID)
}

func (s *PostService) UpdatePost(ctx context.Context, caller models.Caller, postID uint, in UpdatePostInput) (post *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "PostService", "UpdatePost",
		attribute.Int64("post.id", int64(postID)))
	defer func() {
		observability.EndSpan(span, err)
		observability.RecordPostMutation("update", err)
	}()

	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	post, err = s.postRepo.GetOwned(ctx, postID, caller.UserID)
	if err != nil {
		return nil, err
	}

	var p validation.Problems
	if in.Title != nil {
		post.Title = validation.Title(&p, *in.Title)
	}
	if in.Content != nil {
		post.Content = validation.Content(&p, *in.Content)
	}
	if in.MaterialsUsed != nil {
		validation.MaxLen(&p, "materials_used", *in.MaterialsUsed, validation.MaterialsMaxLen)
		post.MaterialsUsed = *in.MaterialsUsed
	}
	if in.TimeToComplete != nil {
		validation.MaxLen(&p, "time_to_complete", *in.TimeToComplete, validation.TimeToCompleteMaxLen)
		post.TimeToComplete = *in.TimeToComplete
	}
	if in.PriceRange != nil {
		validation.MaxLen(&p, "price_range", *in.PriceRange, validation.PriceRangeMaxLen)
		post.PriceRange = *in.PriceRange
	}
	if in.CraftCategoryID != nil {
		if id := *in.CraftCategoryID; id == 0 {
			post.CraftCategoryID = nil
		} else {
			if err := s.checkCategory(ctx, &p, id); err != nil {
				return nil, err
			}
			post.CraftCategoryID = &id
		}
	}
	if in.IsForSale != nil {
		post.IsForSale = *in.IsForSale
	}
	if in.IsFeatured != nil {
		post.IsFeatured = *in.IsFeatured
	}
	var images []models.PostImage
	if in.Images != nil {
		images = checkImages(&p, *in.Images)
		if images == nil {
			images = []models.PostImage{}
		}
	}
	if err := p.Err(); err != nil {
		return nil, err
	}

	if err := s.postRepo.Update(ctx, post, images); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, caller.UserID)
}

func (s *PostService) DeletePost(ctx context.Context, caller models.Caller, postID uint) (err error) {
	ctx, span := observability.StartSpan(ctx, "PostService", "DeletePost",
		attribute.Int64("post.id", int64(postID)))
	defer func() {
		observability.EndSpan(span, err)
		observability.RecordPostMutation("delete", err)
	}()

	if err := requireCaller(caller); err != nil {
		return err
	}
	if _, err := s.postRepo.GetOwned(ctx, postID, caller.UserID); err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.ProfileKey(caller.UserID))

	middleware.Logger.InfoContext(ctx, "post deleted", slog.Uint64("post_id", uint64(postID)))
	return nil
}

// SetFeatured is the moderation path for the featured flag. It skips the
// ownership gate and is only reachable from operator tooling.
func (s *PostService) SetFeatured(ctx context.Context, postID uint, featured bool) error {
	return s.postRepo.SetFeatured(ctx, postID, featured)
}

func (s *PostService) checkCategory(ctx context.Context, p *validation.Problems, id uint) error {
	ok, err := s.categoryRepo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		p.Add("craft_category_id %d does not exist", id)
	}
	return nil
}

// checkImages validates the list and assigns order by position.
func checkImages(p *validation.Problems, in []ImageInput) []models.PostImage {
	if len(in) > validation.MaxImagesPerPost {
		p.Add("at most %d images are allowed", validation.MaxImagesPerPost)
	}
	if len(in) == 0 {
		return nil
	}
	out := make([]models.PostImage, 0, len(in))
	for i, img := range in {
		validation.ImageRef(p, i, img.ImageURL, img.AltText)
		out = append(out, models.PostImage{
			ImageURL: img.ImageURL,
			AltText:  img.AltText,
			Order:    i,
		})
	}
	return out
}
