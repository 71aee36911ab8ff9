package repository

import (
	"context"
	"strings"
	"time"

	"crafthub/internal/cache"
	"crafthub/internal/models"
	"crafthub/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostFilter narrows ListPosts. Nil fields are not applied.
type PostFilter struct {
	AuthorID      *uint
	CategoryID    *uint
	IsForSale     *bool
	IsFeatured    *bool
	Search        string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Limit         int
	Offset        int
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	// Create inserts the post and its images in one transaction.
	Create(ctx context.Context, post *models.Post) error
	// GetByID returns the fully detailed post as seen by viewerID.
	GetByID(ctx context.Context, id, viewerID uint) (*models.Post, error)
	// GetOwned returns the bare post row only when authorID wrote it.
	GetOwned(ctx context.Context, id, authorID uint) (*models.Post, error)
	Exists(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, filter PostFilter, viewerID uint) ([]*models.Post, error)
	// Update saves the post columns. A non-nil images slice replaces the
	// existing images.
	Update(ctx context.Context, post *models.Post, images []models.PostImage) error
	// Delete removes the post with its likes, comments, shares and images.
	Delete(ctx context.Context, id uint) error
	SetFeatured(ctx context.Context, id uint, featured bool) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()

	images := post.Images
	post.Images = nil
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return err
		}
		return insertImages(tx, post.ID, images)
	})
	post.Images = images
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func insertImages(tx *gorm.DB, postID uint, images []models.PostImage) error {
	if len(images) == 0 {
		return nil
	}
	for i := range images {
		images[i].ID = 0
		images[i].PostID = postID
	}
	return tx.Create(&images).Error
}

// GetByID serves anonymous reads through the post cache. Viewer-specific
// reads always hit the database because is_liked differs per viewer.
func (r *postRepository) GetByID(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	defer observability.TrackQuery("get", "posts")()

	var post models.Post
	load := func() error {
		if err := r.detailed(ctx, viewerID).First(&post, "posts.id = ?", id).Error; err != nil {
			return lookupError(err, "Post", id)
		}
		return nil
	}

	var err error
	if viewerID == 0 {
		err = cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, load)
	} else {
		err = load()
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetOwned(ctx context.Context, id, authorID uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, authorID).
		First(&post).Error
	if err != nil {
		return nil, lookupError(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *postRepository) List(ctx context.Context, f PostFilter, viewerID uint) ([]*models.Post, error) {
	defer observability.TrackQuery("list", "posts")()

	limit, offset := clampPage(f.Limit, f.Offset)
	q := r.detailed(ctx, viewerID)

	if f.AuthorID != nil {
		q = q.Where("posts.user_id = ?", *f.AuthorID)
	}
	if f.CategoryID != nil {
		q = q.Where("posts.craft_category_id = ?", *f.CategoryID)
	}
	if f.IsForSale != nil {
		q = q.Where("posts.is_for_sale = ?", *f.IsForSale)
	}
	if f.IsFeatured != nil {
		q = q.Where("posts.is_featured = ?", *f.IsFeatured)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + escapeLike(strings.ToLower(term)) + "%"
		q = q.Where(`(LOWER(posts.title) LIKE ? ESCAPE '\' OR LOWER(posts.content) LIKE ? ESCAPE '\')`, like, like)
	}
	if f.CreatedAfter != nil {
		q = q.Where("posts.created_at >= ?", f.CreatedAfter.UTC())
	}
	if f.CreatedBefore != nil {
		q = q.Where("posts.created_at <= ?", f.CreatedBefore.UTC())
	}

	var posts []*models.Post
	err := q.Order("posts.created_at DESC").
		Order("posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// detailed selects a post with its derived counts and preloads author,
// category and ordered images.
func (r *postRepository) detailed(ctx context.Context, viewerID uint) *gorm.DB {
	sel := "posts.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count, " +
		"(SELECT COUNT(*) FROM shares WHERE shares.post_id = posts.id) AS shares_count"

	q := r.db.WithContext(ctx).Model(&models.Post{})
	if viewerID != 0 {
		q = q.Select(sel+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS is_liked", viewerID)
	} else {
		q = q.Select(sel + ", false AS is_liked")
	}

	return q.
		Preload("Author").
		Preload("CraftCategory").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC, id ASC")
		})
}

func (r *postRepository) Update(ctx context.Context, post *models.Post, images []models.PostImage) error {
	defer observability.TrackQuery("update", "posts")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(post).Error; err != nil {
			return err
		}
		if images == nil {
			return nil
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostImage{}).Error; err != nil {
			return err
		}
		return insertImages(tx, post.ID, images)
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "posts")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []any{&models.Like{}, &models.Comment{}, &models.Share{}, &models.PostImage{}} {
			if err := tx.Where("post_id = ?", id).Delete(dependent).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
	if err != nil {
		if models.IsNotFound(err) {
			return err
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

func (r *postRepository) SetFeatured(ctx context.Context, id uint, featured bool) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Update("is_featured", featured)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
