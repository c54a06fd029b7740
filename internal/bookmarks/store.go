package bookmarks

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("bookmark not found")

type Store interface {
	Create(ctx context.Context, b *Bookmark) error
	List(ctx context.Context, userID string, limit int) ([]Bookmark, error)
	// Delete removes the bookmark only if userID owns it, else ErrNotFound.
	Delete(ctx context.Context, userID, bookmarkID string) error
	Count(ctx context.Context, userID string) (int64, error)
	Chapters(ctx context.Context, userID string) ([]ChapterRef, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, b *Bookmark) error {
	return s.db.WithContext(ctx).Create(b).Error
}

func (s *GormStore) List(ctx context.Context, userID string, limit int) ([]Bookmark, error) {
	var out []Bookmark
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (s *GormStore) Delete(ctx context.Context, userID, bookmarkID string) error {
	res := s.db.WithContext(ctx).
		Where("bookmark_id = ? AND user_id = ?", bookmarkID, userID).
		Delete(&Bookmark{})
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
	err := s.db.WithContext(ctx).Model(&Bookmark{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (s *GormStore) Chapters(ctx context.Context, userID string) ([]ChapterRef, error) {
	var out []ChapterRef
	err := s.db.WithContext(ctx).Model(&Bookmark{}).
		Distinct("book", "chapter").
		Where("user_id = ?", userID).
		Scan(&out).Error
	return out, err
}
