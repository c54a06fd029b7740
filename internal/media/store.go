package media

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store interface {
	// Mark is idempotent.
	Mark(ctx context.Context, userID, mediaID string) error
	Unmark(ctx context.Context, userID, mediaID string) error
	Watched(ctx context.Context, userID string) ([]string, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Mark(ctx context.Context, userID, mediaID string) error {
	w := Watch{UserID: userID, MediaID: mediaID, WatchedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&w).Error
}

func (s *GormStore) Unmark(ctx context.Context, userID, mediaID string) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND media_id = ?", userID, mediaID).
		Delete(&Watch{}).Error
}

func (s *GormStore) Watched(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&Watch{}).
		Where("user_id = ?", userID).
		Order("watched_at").
		Pluck("media_id", &ids).Error
	return ids, err
}
