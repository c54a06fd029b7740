package profile

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store interface {
	// GetSettings returns DefaultSettings when the user has no row yet.
	GetSettings(ctx context.Context, userID string) (Settings, error)
	SaveSettings(ctx context.Context, s *Settings) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetSettings(ctx context.Context, userID string) (Settings, error) {
	var out Settings
	err := s.db.WithContext(ctx).First(&out, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DefaultSettings(userID), nil
	}
	return out, err
}

func (s *GormStore) SaveSettings(ctx context.Context, st *Settings) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(st).Error
}
