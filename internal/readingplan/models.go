package readingplan

import "time"

// Completion marks one plan day as read by a user.
type Completion struct {
	UserID      string    `gorm:"primaryKey" json:"-"`
	Day         int       `gorm:"primaryKey;autoIncrement:false" json:"day"`
	CompletedAt time.Time `gorm:"not null" json:"completed_at"`
}

func (Completion) TableName() string { return "app_readingplan.completions" }

type Progress struct {
	CompletedDays      int     `json:"completed_days"`
	TotalDays          int     `json:"total_days"`
	ProgressPercentage float64 `json:"progress_percentage"`
	CurrentStreak      int     `json:"current_streak"`
	CompletedList      []int   `json:"completed_list"`
}

type todayResponse struct {
	Reading
	Date string `json:"date"`
}

type pageResponse struct {
	Readings []Reading `json:"readings"`
	Page     int       `json:"page"`
	Pages    int       `json:"pages"`
	Total    int       `json:"total"`
}
