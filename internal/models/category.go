package models

import "time"

// CraftCategory groups posts by craft (knitting, woodworking, ...).
type CraftCategory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"size:200" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (CraftCategory) TableName() string {
	return "craft_categories"
}
