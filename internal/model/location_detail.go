package model

import "time"

// LocationDetail holds the enrichment result for a post's resolved location.
// At most one row per post. Description, Coordinate and WikipediaSummary are
// each independently nullable: any enrichment step may fail on its own and a
// partially filled row is a valid terminal state.
type LocationDetail struct {
	ID               uint    `gorm:"primaryKey;autoIncrement"`
	PostID           uint    `gorm:"not null;uniqueIndex:ux_location_details_post"`
	Location         string  `gorm:"type:varchar(255);not null"`
	Description      *string `gorm:"type:text"`
	Coordinate       *string `gorm:"type:varchar(255)"`
	WikipediaSummary *string `gorm:"type:text"`
	CreatedAt        time.Time
}

func (LocationDetail) TableName() string { return "location_details" }
