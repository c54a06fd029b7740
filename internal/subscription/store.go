package subscription

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/matth2611/Holy-navigator/internal/auth"
	"github.com/matth2611/Holy-navigator/internal/utils"
)

var ErrNotFound = errors.New("transaction not found")

type Store interface {
	CreateTransaction(ctx context.Context, t *Transaction) error
	GetBySession(ctx context.Context, sessionID string) (*Transaction, error)
	// Confirm marks the session paid and grants premium. applied is false
	// when the session was already paid, so repeats change nothing.
	Confirm(ctx context.Context, c Confirmation) (applied bool, err error)
}

type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

func (s *GormStore) CreateTransaction(ctx context.Context, t *Transaction) error {
	return s.db.WithContext(ctx).Create(t).Error
}

func (s *GormStore) GetBySession(ctx context.Context, sessionID string) (*Transaction, error) {
	var t Transaction
	err := s.db.WithContext(ctx).First(&t, "session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *GormStore) Confirm(ctx context.Context, c Confirmation) (bool, error) {
	now := s.now().UTC()
	applied := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The row lock taken here serializes the poll and the webhook.
		var t Transaction
		res := tx.Model(&t).
			Clauses(clause.Returning{Columns: []clause.Column{{Name: "user_id"}}}).
			Where("session_id = ? AND payment_status <> ?", c.SessionID, StatusPaid).
			Updates(map[string]any{
				"payment_status": StatusPaid,
				"source":         c.Source,
				"paid_at":        now,
				"updated_at":     now,
			})
		if res.Error != nil {
			return res.Error
		}

		userID := t.UserID
		if res.RowsAffected == 0 {
			if c.UserID == "" {
				return nil
			}
			// Either already paid, or a webhook for a session we never stored.
			ins := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "session_id"}},
				DoNothing: true,
			}).Create(&Transaction{
				TransactionID: utils.NewID("txn"),
				SessionID:     c.SessionID,
				UserID:        c.UserID,
				AmountCents:   c.AmountCents,
				Currency:      c.Currency,
				PaymentStatus: StatusPaid,
				Source:        &c.Source,
				PaidAt:        &now,
				CreatedAt:     now,
				UpdatedAt:     now,
			})
			if ins.Error != nil {
				return ins.Error
			}
			if ins.RowsAffected == 0 {
				return nil
			}
			userID = c.UserID
		}

		applied = true
		return tx.Model(&auth.User{}).
			Where("user_id = ?", userID).
			Updates(map[string]any{
				"is_premium":    true,
				"premium_since": gorm.Expr("COALESCE(premium_since, ?)", now),
			}).Error
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}
