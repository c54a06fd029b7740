package forum

import (
	"time"

	"github.com/lib/pq"
)

// Post keeps Upvotes equal to len(UpvotedBy); both only change together
// through the toggle statement in the store.
type Post struct {
	PostID        string         `gorm:"primaryKey" json:"post_id"`
	UserID        string         `gorm:"not null;index" json:"user_id"`
	UserName      string         `gorm:"not null" json:"user_name"`
	Title         string         `gorm:"not null" json:"title"`
	Content       string         `gorm:"type:text;not null" json:"content"`
	ContentHTML   string         `gorm:"type:text;not null" json:"content_html"`
	ScriptureRef  *string        `json:"scripture_ref"`
	Tags          pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"tags"`
	Upvotes       int            `gorm:"not null;default:0" json:"upvotes"`
	UpvotedBy     pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"-"`
	CommentsCount int            `gorm:"not null;default:0" json:"comments_count"`
	CreatedAt     time.Time      `gorm:"not null;index:,sort:desc" json:"created_at"`
}

func (Post) TableName() string { return "app_forum.posts" }

type Comment struct {
	CommentID   string         `gorm:"primaryKey" json:"comment_id"`
	PostID      string         `gorm:"not null;index" json:"post_id"`
	UserID      string         `gorm:"not null" json:"user_id"`
	UserName    string         `gorm:"not null" json:"user_name"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	ContentHTML string         `gorm:"type:text;not null" json:"content_html"`
	Upvotes     int            `gorm:"not null;default:0" json:"upvotes"`
	UpvotedBy   pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"-"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
}

func (Comment) TableName() string { return "app_forum.comments" }

// ToggleResult is the state after an upvote toggle.
type ToggleResult struct {
	Upvoted bool `json:"upvoted"`
	Upvotes int  `json:"upvotes"`
}

type createPostRequest struct {
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	ScriptureRef *string  `json:"scripture_ref"`
	Tags         []string `json:"tags"`
}

type createCommentRequest struct {
	Content string `json:"content"`
}
