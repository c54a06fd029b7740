package push

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store interface {
	Upsert(ctx context.Context, s *Subscription) error
	// Delete removes userID's subscription for endpoint, or all of them
	// when endpoint is empty. It returns how many rows went away.
	Delete(ctx context.Context, userID, endpoint string) (int64, error)
	Count(ctx context.Context, userID string) (int64, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Upsert(ctx context.Context, sub *Subscription) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth", "updated_at"}),
		}).
		Create(sub).Error
}

func (s *GormStore) Delete(ctx context.Context, userID, endpoint string) (int64, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if endpoint != "" {
		q = q.Where("endpoint = ?", endpoint)
	}
	res := q.Delete(&Subscription{})
	return res.RowsAffected, res.Error
}

func (s *GormStore) Count(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Subscription{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
