package models

import "time"

// Post is a published craft item.
type Post struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"not null;index" json:"author_id"`
	Author          *User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Title           string         `gorm:"size:200;not null" json:"title"`
	Content         string         `gorm:"type:text;not null" json:"content"`
	CraftCategoryID *uint          `gorm:"index" json:"craft_category_id"`
	CraftCategory   *CraftCategory `gorm:"foreignKey:CraftCategoryID;constraint:OnDelete:SET NULL" json:"craft_category,omitempty"`
	MaterialsUsed   string         `gorm:"size:300" json:"materials_used"`
	TimeToComplete  string         `gorm:"size:50" json:"time_to_complete"`
	PriceRange      string         `gorm:"size:50" json:"price_range"`
	IsForSale       bool           `gorm:"not null;index" json:"is_for_sale"`
	IsFeatured      bool           `gorm:"not null;index" json:"is_featured"`
	Images          []PostImage    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"images"`

	// Derived from ledger rows at query time, never stored.
	LikesCount    int64 `gorm:"->;-:migration" json:"likes_count"`
	CommentsCount int64 `gorm:"->;-:migration" json:"comments_count"`
	SharesCount   int64 `gorm:"->;-:migration" json:"shares_count"`
	// IsLiked is relative to the viewer; always false for anonymous reads.
	IsLiked bool `gorm:"->;-:migration" json:"is_liked"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostImage is one ordered image reference attached to a post. The binary
// lives in external storage; only the URL is kept here.
type PostImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	ImageURL  string    `gorm:"size:500;not null" json:"image_url"`
	AltText   string    `gorm:"size:200" json:"alt_text"`
	Order     int       `gorm:"column:sort_order;not null" json:"order"`
	CreatedAt time.Time `json:"created_at"`
}
