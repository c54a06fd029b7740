package push

import "time"

// Subscription is a browser Web Push registration. Endpoint is unique;
// re-subscribing the same endpoint moves it to the current user.
type Subscription struct {
	SubscriptionID string    `gorm:"primaryKey" json:"subscription_id"`
	UserID         string    `gorm:"not null;index" json:"user_id"`
	Endpoint       string    `gorm:"type:text;not null;uniqueIndex" json:"endpoint"`
	P256dh         string    `gorm:"not null" json:"-"`
	Auth           string    `gorm:"not null" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Subscription) TableName() string { return "app_push.subscriptions" }

type subscribeRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}
