package profile

import "time"

// Settings is one row per user. A user without a row gets DefaultSettings.
type Settings struct {
	UserID               string    `gorm:"primaryKey" json:"-"`
	NotificationEmail    bool      `gorm:"not null" json:"notification_email"`
	NotificationForum    bool      `gorm:"not null" json:"notification_forum"`
	PreferredTranslation string    `gorm:"not null" json:"preferred_translation"`
	ThemePreference      string    `gorm:"not null" json:"theme_preference"`
	DailyDevotional      bool      `gorm:"not null" json:"daily_devotional"`
	DailyNews            bool      `gorm:"not null" json:"daily_news"`
	ReadingPlanReminder  bool      `gorm:"not null" json:"reading_plan_reminder"`
	WeeklySermonUpdates  bool      `gorm:"not null" json:"weekly_sermon_updates"`
	ReminderTime         string    `gorm:"not null" json:"reminder_time"`
	UpdatedAt            time.Time `json:"-"`
}

func (Settings) TableName() string { return "app_profile.settings" }

func DefaultSettings(userID string) Settings {
	return Settings{
		UserID:               userID,
		NotificationEmail:    true,
		NotificationForum:    true,
		PreferredTranslation: "WEB",
		ThemePreference:      "system",
		DailyDevotional:      true,
		DailyNews:            false,
		ReadingPlanReminder:  true,
		WeeklySermonUpdates:  false,
		ReminderTime:         "07:00",
	}
}

type Stats struct {
	Bookmarks  int64 `json:"bookmarks"`
	Journals   int64 `json:"journals"`
	ForumPosts int64 `json:"forum_posts"`
}

type profileSettings struct {
	NotificationEmail    bool   `json:"notification_email"`
	NotificationForum    bool   `json:"notification_forum"`
	PreferredTranslation string `json:"preferred_translation"`
	ThemePreference      string `json:"theme_preference"`
}

type profileResponse struct {
	UserID    string          `json:"user_id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Picture   *string         `json:"picture"`
	IsPremium bool            `json:"is_premium"`
	CreatedAt time.Time       `json:"created_at"`
	Stats     Stats           `json:"stats"`
	Settings  profileSettings `json:"settings"`
}

type updateProfileRequest struct {
	Name                 *string `json:"name"`
	Picture              *string `json:"picture"`
	NotificationEmail    *bool   `json:"notification_email"`
	NotificationForum    *bool   `json:"notification_forum"`
	PreferredTranslation *string `json:"preferred_translation"`
	ThemePreference      *string `json:"theme_preference"`
}

// NotificationPreferences is the /notifications/preferences view of Settings.
type NotificationPreferences struct {
	DailyDevotional     bool   `json:"daily_devotional"`
	DailyNews           bool   `json:"daily_news"`
	ReadingPlanReminder bool   `json:"reading_plan_reminder"`
	WeeklySermonUpdates bool   `json:"weekly_sermon_updates"`
	ReminderTime        string `json:"reminder_time"`
}

type updatePreferencesRequest struct {
	DailyDevotional     *bool   `json:"daily_devotional"`
	DailyNews           *bool   `json:"daily_news"`
	ReadingPlanReminder *bool   `json:"reading_plan_reminder"`
	WeeklySermonUpdates *bool   `json:"weekly_sermon_updates"`
	ReminderTime        *string `json:"reminder_time"`
}

type readingProgress struct {
	BooksStarted       int     `json:"books_started"`
	TotalBooks         int     `json:"total_books"`
	ChaptersBookmarked int     `json:"chapters_bookmarked"`
	TotalChapters      int     `json:"total_chapters"`
	ProgressPercentage float64 `json:"progress_percentage"`
}

type uploadRequest struct {
	ContentType string `json:"content_type"`
}
