package readingplan

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store interface {
	// Complete is idempotent.
	Complete(ctx context.Context, userID string, day int) error
	Uncomplete(ctx context.Context, userID string, day int) error
	CompletedDays(ctx context.Context, userID string) ([]int, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Complete(ctx context.Context, userID string, day int) error {
	c := Completion{UserID: userID, Day: day, CompletedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&c).Error
}

func (s *GormStore) Uncomplete(ctx context.Context, userID string, day int) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND day = ?", userID, day).
		Delete(&Completion{}).Error
}

func (s *GormStore) CompletedDays(ctx context.Context, userID string) ([]int, error) {
	var days []int
	err := s.db.WithContext(ctx).Model(&Completion{}).
		Where("user_id = ?", userID).
		Order("day").
		Pluck("day", &days).Error
	return days, err
}
