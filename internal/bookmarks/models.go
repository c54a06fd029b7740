package bookmarks

import "time"

type Bookmark struct {
	BookmarkID string    `gorm:"primaryKey" json:"bookmark_id"`
	UserID     string    `gorm:"not null;index:idx_bookmarks_user_created,priority:1" json:"user_id"`
	Book       string    `gorm:"not null" json:"book"`
	Chapter    int       `gorm:"not null" json:"chapter"`
	Verse      *int      `json:"verse"`
	Note       *string   `json:"note"`
	CreatedAt  time.Time `gorm:"not null;index:idx_bookmarks_user_created,priority:2,sort:desc" json:"created_at"`
}

func (Bookmark) TableName() string { return "app_bookmarks.bookmarks" }

type createRequest struct {
	Book    string  `json:"book"`
	Chapter int     `json:"chapter"`
	Verse   *int    `json:"verse"`
	Note    *string `json:"note"`
}

// ChapterRef is a distinct (book, chapter) pair a user has bookmarked.
type ChapterRef struct {
	Book    string
	Chapter int
}
