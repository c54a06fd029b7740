package journal

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("journal entry not found")

// Store operations on a single entry are scoped to its owner; an entry of
// another user behaves as if it did not exist.
type Store interface {
	Create(ctx context.Context, e *Entry) error
	List(ctx context.Context, userID string, limit int) ([]Entry, error)
	Get(ctx context.Context, userID, journalID string) (*Entry, error)
	Update(ctx context.Context, userID, journalID string, fields map[string]any) (*Entry, error)
	Delete(ctx context.Context, userID, journalID string) error
	Count(ctx context.Context, userID string) (int64, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, e *Entry) error {
	return s.db.WithContext(ctx).Create(e).Error
}

func (s *GormStore) List(ctx context.Context, userID string, limit int) ([]Entry, error) {
	var out []Entry
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (s *GormStore) Get(ctx context.Context, userID, journalID string) (*Entry, error) {
	var e Entry
	err := s.db.WithContext(ctx).
		Where("journal_id = ? AND user_id = ?", journalID, userID).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *GormStore) Update(ctx context.Context, userID, journalID string, fields map[string]any) (*Entry, error) {
	if len(fields) > 0 {
		res := s.db.WithContext(ctx).Model(&Entry{}).
			Where("journal_id = ? AND user_id = ?", journalID, userID).
			Updates(fields)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return s.Get(ctx, userID, journalID)
}

func (s *GormStore) Delete(ctx context.Context, userID, journalID string) error {
	res := s.db.WithContext(ctx).
		Where("journal_id = ? AND user_id = ?", journalID, userID).
		Delete(&Entry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) Count(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Entry{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
