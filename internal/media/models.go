package media

import "time"

type Watch struct {
	UserID    string    `gorm:"primaryKey" json:"user_id"`
	MediaID   string    `gorm:"primaryKey" json:"media_id"`
	WatchedAt time.Time `gorm:"not null" json:"watched_at"`
}

func (Watch) TableName() string { return "app_media.watches" }

type libraryStats struct {
	TotalVideos int `json:"total_videos"`
	TotalAudio  int `json:"total_audio"`
	Watched     int `json:"watched"`
}

type libraryResponse struct {
	Videos     []Item       `json:"videos"`
	Audio      []Item       `json:"audio"`
	Notice     string       `json:"notice"`
	Categories []string     `json:"categories"`
	Stats      libraryStats `json:"stats"`
}
