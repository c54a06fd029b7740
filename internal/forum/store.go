package forum

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
)

type Store interface {
	CreatePost(ctx context.Context, p *Post) error
	ListPosts(ctx context.Context, skip, limit int, tag string) ([]Post, error)
	GetPost(ctx context.Context, postID string) (*Post, error)
	ListComments(ctx context.Context, postID string, limit int) ([]Comment, error)
	// DeletePost removes an author's post and its comments.
	DeletePost(ctx context.Context, userID, postID string) error
	// CreateComment inserts c and bumps the post's comment count together.
	CreateComment(ctx context.Context, c *Comment) error
	DeleteComment(ctx context.Context, userID, commentID string) error
	TogglePostUpvote(ctx context.Context, postID, userID string) (ToggleResult, error)
	ToggleCommentUpvote(ctx context.Context, commentID, userID string) (ToggleResult, error)
	CountPosts(ctx context.Context, userID string) (int64, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreatePost(ctx context.Context, p *Post) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *GormStore) ListPosts(ctx context.Context, skip, limit int, tag string) ([]Post, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC").Offset(skip).Limit(limit)
	if tag != "" {
		q = q.Where("? = ANY(tags)", tag)
	}
	var out []Post
	err := q.Find(&out).Error
	return out, err
}

func (s *GormStore) GetPost(ctx context.Context, postID string) (*Post, error) {
	var p Post
	err := s.db.WithContext(ctx).First(&p, "post_id = ?", postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *GormStore) ListComments(ctx context.Context, postID string, limit int) ([]Comment, error) {
	var out []Comment
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (s *GormStore) DeletePost(ctx context.Context, userID, postID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return tx.Where("post_id = ?", postID).Delete(&Comment{}).Error
	})
}

func (s *GormStore) CreateComment(ctx context.Context, c *Comment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Locks the post row, so a concurrent DeletePost either waits for
		// this comment or makes the update miss.
		res := tx.Model(&Post{}).
			Where("post_id = ?", c.PostID).
			Update("comments_count", gorm.Expr("comments_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return tx.Create(c).Error
	})
}

func (s *GormStore) DeleteComment(ctx context.Context, userID, commentID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c Comment
		err := tx.Clauses(clause.Returning{Columns: []clause.Column{{Name: "post_id"}}}).
			Where("comment_id = ? AND user_id = ?", commentID, userID).
			Delete(&c).Error
		if err != nil {
			return err
		}
		if c.PostID == "" {
			return ErrCommentNotFound
		}
		return tx.Model(&Post{}).
			Where("post_id = ?", c.PostID).
			Update("comments_count", gorm.Expr("GREATEST(comments_count - 1, 0)")).Error
	})
}

// toggleSQL flips membership of @user in upvoted_by and moves the counter
// in the same row update. SET expressions all read the pre-update row;
// RETURNING reads the new one.
const toggleSQL = `
UPDATE %s
SET upvotes = CASE WHEN CAST(@user AS text) = ANY(upvoted_by) THEN upvotes - 1 ELSE upvotes + 1 END,
    upvoted_by = CASE WHEN CAST(@user AS text) = ANY(upvoted_by)
        THEN array_remove(upvoted_by, CAST(@user AS text))
        ELSE array_append(upvoted_by, CAST(@user AS text)) END
WHERE %s = @id
RETURNING CAST(@user AS text) = ANY(upvoted_by) AS upvoted, upvotes`

var (
	togglePostSQL    = fmt.Sprintf(toggleSQL, Post{}.TableName(), "post_id")
	toggleCommentSQL = fmt.Sprintf(toggleSQL, Comment{}.TableName(), "comment_id")
)

func (s *GormStore) TogglePostUpvote(ctx context.Context, postID, userID string) (ToggleResult, error) {
	return s.toggle(ctx, togglePostSQL, postID, userID, ErrPostNotFound)
}

func (s *GormStore) ToggleCommentUpvote(ctx context.Context, commentID, userID string) (ToggleResult, error) {
	return s.toggle(ctx, toggleCommentSQL, commentID, userID, ErrCommentNotFound)
}

func (s *GormStore) toggle(ctx context.Context, query, id, userID string, notFound error) (ToggleResult, error) {
	var out ToggleResult
	res := s.db.WithContext(ctx).
		Raw(query, sql.Named("user", userID), sql.Named("id", id)).
		Scan(&out)
	if res.Error != nil {
		return ToggleResult{}, res.Error
	}
	if res.RowsAffected == 0 {
		return ToggleResult{}, notFound
	}
	return out, nil
}

func (s *GormStore) CountPosts(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Post{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
