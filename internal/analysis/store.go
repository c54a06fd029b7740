package analysis

import (
	"context"

	"gorm.io/gorm"
)

type Store interface {
	Create(ctx context.Context, a *Analysis) error
	List(ctx context.Context, userID string, limit int) ([]Analysis, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, a *Analysis) error {
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *GormStore) List(ctx context.Context, userID string, limit int) ([]Analysis, error) {
	var out []Analysis
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
