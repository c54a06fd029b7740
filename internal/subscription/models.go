package subscription

import "time"

const (
	StatusPending = "pending"
	StatusPaid    = "paid"

	planType = "premium_monthly"
)

// Transaction records one checkout session. PaymentStatus moves from
// pending to paid at most once.
type Transaction struct {
	TransactionID string     `gorm:"primaryKey" json:"transaction_id"`
	SessionID     string     `gorm:"not null;uniqueIndex" json:"session_id"`
	UserID        string     `gorm:"not null;index" json:"user_id"`
	AmountCents   int64      `gorm:"not null" json:"amount_cents"`
	Currency      string     `gorm:"not null" json:"currency"`
	PaymentStatus string     `gorm:"not null;default:pending" json:"payment_status"`
	Source        *string    `json:"source,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (Transaction) TableName() string { return "app_subscription.transactions" }

// Confirmation is a paid notification from either the status poll or the webhook.
type Confirmation struct {
	SessionID   string
	UserID      string
	AmountCents int64
	Currency    string
	Source      string
}

// Plan is the single premium offer.
type Plan struct {
	Amount   float64  `json:"amount"`
	Currency string   `json:"currency"`
	Interval string   `json:"interval"`
	Features []string `json:"features"`
}

type checkoutRequest struct {
	OriginURL string `json:"origin_url"`
}

type checkoutResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

type statusResponse struct {
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
	Amount        float64 `json:"amount"`
}
