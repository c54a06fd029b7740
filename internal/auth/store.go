package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/matth2611/Holy-navigator/internal/middleware"
	"github.com/matth2611/Holy-navigator/internal/utils"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Store persists users.
type Store interface {
	CreateUser(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, userID string) (*User, error)
	// UpsertFederated creates the user on first sight, otherwise refreshes
	// name and picture. The existing id and premium state are kept.
	UpsertFederated(ctx context.Context, email, name string, picture *string) (*User, error)
	UpdatePassword(ctx context.Context, userID, hashed string) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateUser(ctx context.Context, u *User) error {
	err := s.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailTaken
	}
	return err
}

func (s *GormStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.first(ctx, "email = ?", strings.ToLower(email))
}

func (s *GormStore) FindByID(ctx context.Context, userID string) (*User, error) {
	return s.first(ctx, "user_id = ?", userID)
}

func (s *GormStore) first(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).First(&u, query, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *GormStore) UpsertFederated(ctx context.Context, email, name string, picture *string) (*User, error) {
	email = strings.ToLower(email)
	u := User{
		UserID:  utils.NewID("user"),
		Email:   email,
		Name:    name,
		Picture: picture,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "picture"}),
	}).Create(&u).Error
	if err != nil {
		return nil, fmt.Errorf("upsert federated user: %w", err)
	}

	// On conflict the generated id was discarded; read back the stored row.
	return s.FindByEmail(ctx, email)
}

func (s *GormStore) UpdatePassword(ctx context.Context, userID, hashed string) error {
	res := s.db.WithContext(ctx).Model(&User{}).
		Where("user_id = ?", userID).
		Update("hashed_password", hashed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateProfile applies the given column updates (name, picture) and
// returns the stored row.
func (s *GormStore) UpdateProfile(ctx context.Context, userID string, fields map[string]any) (*User, error) {
	if len(fields) > 0 {
		res := s.db.WithContext(ctx).Model(&User{}).Where("user_id = ?", userID).Updates(fields)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return s.FindByID(ctx, userID)
}

// PrincipalFinder adapts a Store to middleware.UserFinder.
type PrincipalFinder struct {
	Store Store
}

func (f PrincipalFinder) FindPrincipal(ctx context.Context, userID string) (utils.Principal, error) {
	u, err := f.Store.FindByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return utils.Principal{}, middleware.ErrUserNotFound
	}
	if err != nil {
		return utils.Principal{}, err
	}
	return utils.Principal{
		UserID:    u.UserID,
		Email:     u.Email,
		Name:      u.Name,
		IsPremium: u.IsPremium,
	}, nil
}
