package journal

import "time"

type Entry struct {
	JournalID    string    `gorm:"primaryKey" json:"journal_id"`
	UserID       string    `gorm:"not null;index:idx_journal_user_created,priority:1" json:"user_id"`
	Title        string    `gorm:"not null" json:"title"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	ScriptureRef *string   `json:"scripture_ref"`
	Mood         *string   `json:"mood"`
	CreatedAt    time.Time `gorm:"not null;index:idx_journal_user_created,priority:2,sort:desc" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Entry) TableName() string { return "app_journal.entries" }

type createRequest struct {
	Title        string  `json:"title"`
	Content      string  `json:"content"`
	ScriptureRef *string `json:"scripture_ref"`
	Mood         *string `json:"mood"`
}

// updateRequest fields left nil are not changed.
type updateRequest struct {
	Title        *string `json:"title"`
	Content      *string `json:"content"`
	ScriptureRef *string `json:"scripture_ref"`
	Mood         *string `json:"mood"`
}
