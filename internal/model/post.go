package model

import "time"

// Post is a user submission. Rows are insert-only; ImageURL always points at
// the originally uploaded object, never a perturbed variant.
type Post struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Username  string    `gorm:"type:varchar(255);not null"`
	Text      string    `gorm:"type:text;not null"`
	ImageURL  string    `gorm:"type:varchar(512)"`
	CreatedAt time.Time `gorm:"index:idx_posts_created_at"`
}

func (Post) TableName() string { return "posts" }
