package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/SumireDoi/LocaConne/internal/model"
)

type LocationDetailRepository interface {
	Create(ctx context.Context, detail *model.LocationDetail) error
	GetByPostID(ctx context.Context, postID uint) (*model.LocationDetail, error)
}

type locationDetailRepository struct {
	db *gorm.DB
}

func NewLocationDetailRepository(db *gorm.DB) LocationDetailRepository {
	return &locationDetailRepository{db: db}
}

func (r *locationDetailRepository) Create(ctx context.Context, detail *model.LocationDetail) error {
	if detail.CreatedAt.IsZero() {
		detail.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(detail).Error
}

// GetByPostID returns (nil, nil) when the post has no location detail.
func (r *locationDetailRepository) GetByPostID(ctx context.Context, postID uint) (*model.LocationDetail, error) {
	var detail model.LocationDetail
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).First(&detail).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &detail, nil
}
