package repository

import (
	"context"

	"crafthub/internal/cache"
	"crafthub/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository manages the craft category catalog.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.CraftCategory, error)
	GetByID(ctx context.Context, id uint) (*models.CraftCategory, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Create(ctx context.Context, category *models.CraftCategory) error
	// Delete removes the category; posts in it become uncategorised.
	Delete(ctx context.Context, id uint) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) List(ctx context.Context) ([]models.CraftCategory, error) {
	var categories []models.CraftCategory
	err := cache.Aside(ctx, cache.CategoriesKey, &categories, cache.CategoriesTTL, func() error {
		if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*models.CraftCategory, error) {
	var category models.CraftCategory
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, lookupError(err, "Category", id)
	}
	return &category, nil
}

func (r *categoryRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CraftCategory{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *models.CraftCategory) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("category already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateCategories(ctx)
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	var postIDs []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("craft_category_id = ?", id).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Post{}).
			Where("craft_category_id = ?", id).
			UpdateColumn("craft_category_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.CraftCategory{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Category", id)
		}
		return nil
	})
	if err != nil {
		if models.IsNotFound(err) {
			return err
		}
		return models.NewInternalError(err)
	}

	cache.InvalidateCategories(ctx)
	for _, pid := range postIDs {
		cache.InvalidatePost(ctx, pid)
	}
	return nil
}
