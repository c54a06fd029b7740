package auth

import "time"

// User is an account. HashedPassword is nil for federated-only accounts.
type User struct {
	UserID         string     `gorm:"primaryKey" json:"user_id"`
	Email          string     `gorm:"not null;uniqueIndex" json:"email"`
	Name           string     `gorm:"not null" json:"name"`
	Picture        *string    `json:"picture"`
	HashedPassword *string    `json:"-"`
	IsPremium      bool       `gorm:"not null;default:false" json:"is_premium"`
	PremiumSince   *time.Time `json:"premium_since"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (User) TableName() string { return "app_auth.users" }

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionRequest struct {
	SessionID string `json:"session_id"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// AuthResponse is returned by register, login and the federated session exchange.
type AuthResponse struct {
	UserID    string  `json:"user_id"`
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	Picture   *string `json:"picture"`
	IsPremium bool    `json:"is_premium"`
	Token     string  `json:"token"`
}

// MeResponse is the current-user view.
type MeResponse struct {
	UserID       string     `json:"user_id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Picture      *string    `json:"picture"`
	IsPremium    bool       `json:"is_premium"`
	PremiumSince *time.Time `json:"premium_since"`
	CreatedAt    time.Time  `json:"created_at"`
}
