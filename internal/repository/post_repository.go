package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/SumireDoi/LocaConne/internal/model"
)

// TimelineItem is one row of the timeline read: a post joined with its
// location detail's summary, when one exists.
type TimelineItem struct {
	ID               uint      `json:"id"`
	Username         string    `json:"username"`
	Text             string    `json:"text"`
	ImageURL         string    `json:"image_url"`
	CreatedAt        time.Time `json:"created_at"`
	WikipediaSummary *string   `json:"wikipedia_summary"`
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id uint) (*model.Post, error)
	ListTimeline(ctx context.Context) ([]TimelineItem, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListTimeline(ctx context.Context) ([]TimelineItem, error) {
	var rows []TimelineItem
	err := r.db.WithContext(ctx).
		Table("posts").
		Select("posts.id", "posts.username", "posts.text", "posts.image_url", "posts.created_at", "location_details.wikipedia_summary").
		Joins("LEFT JOIN location_details ON location_details.post_id = posts.id").
		Order("posts.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
