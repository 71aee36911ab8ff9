package repository

import (
	"context"

	"crafthub/internal/cache"
	"crafthub/internal/models"
	"crafthub/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InteractionRepository owns the like and share ledgers.
type InteractionRepository interface {
	// ToggleLike flips the like for (user, post) and reports the new state.
	ToggleLike(ctx context.Context, userID, postID uint) (liked bool, err error)
	RemoveLike(ctx context.Context, userID, postID uint) (removed bool, err error)
	// Share records a share unless one exists; created reports a new row.
	Share(ctx context.Context, userID, postID uint) (created bool, err error)
}

type interactionRepository struct {
	db *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) InteractionRepository {
	return &interactionRepository{db: db}
}

// ToggleLike deletes first; only when nothing was deleted does it insert.
// The insert ignores conflicts so a concurrent liker cannot cause an error.
func (r *interactionRepository) ToggleLike(ctx context.Context, userID, postID uint) (bool, error) {
	defer observability.TrackQuery("toggle", "likes")()

	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			liked = false
			return nil
		}

		like := models.Like{UserID: userID, PostID: postID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Omit(clause.Associations).
			Create(&like).Error; err != nil {
			return err
		}
		liked = true
		return nil
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, postID)
	return liked, nil
}

func (r *interactionRepository) RemoveLike(ctx context.Context, userID, postID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		cache.InvalidatePost(ctx, postID)
	}
	return res.RowsAffected > 0, nil
}

func (r *interactionRepository) Share(ctx context.Context, userID, postID uint) (bool, error) {
	share := models.Share{UserID: userID, PostID: postID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(&share)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		cache.InvalidatePost(ctx, postID)
	}
	return res.RowsAffected > 0, nil
}
