package database

import "crafthub/internal/models"

// PersistentModels returns every schema-managed model, parents before children.
func PersistentModels() []any {
	return []any{
		&models.User{},
		&models.CraftCategory{},
		&models.Post{},
		&models.PostImage{},
		&models.Like{},
		&models.Comment{},
		&models.Share{},
		&models.Follow{},
	}
}
