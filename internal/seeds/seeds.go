// Package seeds loads the demo account and welcome forum threads.
// Every step is idempotent; rerunning only fills in what is missing.
package seeds

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/matth2611/Holy-navigator/internal/auth"
	"github.com/matth2611/Holy-navigator/internal/forum"
	"github.com/matth2611/Holy-navigator/internal/security"
	"github.com/matth2611/Holy-navigator/internal/utils"
)

//go:embed data/welcome.yaml
var welcomeYAML []byte

type DemoUser struct {
	Email   string `yaml:"email"`
	Name    string `yaml:"name"`
	Premium bool   `yaml:"premium"`
}

type WelcomePost struct {
	ID           string   `yaml:"id"`
	Title        string   `yaml:"title"`
	ScriptureRef string   `yaml:"scripture_ref"`
	Tags         []string `yaml:"tags"`
	Content      string   `yaml:"content"`
}

type Bundle struct {
	DemoUser DemoUser      `yaml:"demo_user"`
	Posts    []WelcomePost `yaml:"posts"`
}

// Result counts what a run actually wrote.
type Result struct {
	UserCreated  bool
	PostsCreated int
}

func Load() (*Bundle, error) {
	var b Bundle
	if err := yaml.Unmarshal(welcomeYAML, &b); err != nil {
		return nil, fmt.Errorf("parse welcome.yaml: %w", err)
	}
	if b.DemoUser.Email == "" {
		return nil, errors.New("welcome.yaml: demo_user.email is required")
	}
	seen := make(map[string]bool, len(b.Posts))
	for _, p := range b.Posts {
		if p.ID == "" || seen[p.ID] {
			return nil, fmt.Errorf("welcome.yaml: post id %q is empty or duplicated", p.ID)
		}
		seen[p.ID] = true
	}
	return &b, nil
}

type Seeder struct {
	db       *gorm.DB
	markdown *security.MarkdownRenderer
	log      *slog.Logger
	now      func() time.Time
}

func NewSeeder(db *gorm.DB, markdown *security.MarkdownRenderer, log *slog.Logger) *Seeder {
	return &Seeder{db: db, markdown: markdown, log: log, now: time.Now}
}

// SeedAll creates the demo user (password hashed with bcrypt) and the
// welcome posts authored by it.
func (s *Seeder) SeedAll(ctx context.Context, b *Bundle, password string) (Result, error) {
	var res Result
	if len(password) < 8 {
		return res, errors.New("demo password must be at least 8 characters")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, created, err := s.demoUser(tx, b.DemoUser, password)
		if err != nil {
			return err
		}
		res.UserCreated = created

		for i, p := range b.Posts {
			post, err := s.post(p, user, s.now().UTC().Add(-time.Duration(len(b.Posts)-i)*time.Hour))
			if err != nil {
				return err
			}
			r := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(post)
			if r.Error != nil {
				return fmt.Errorf("create post %s: %w", p.ID, r.Error)
			}
			if r.RowsAffected == 0 {
				s.log.Info("post exists, skipping", slog.String("post_id", p.ID))
				continue
			}
			res.PostsCreated++
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	s.log.Info("seeded",
		slog.Bool("user_created", res.UserCreated),
		slog.Int("posts_created", res.PostsCreated),
	)
	return res, nil
}

func (s *Seeder) demoUser(tx *gorm.DB, demo DemoUser, password string) (*auth.User, bool, error) {
	email := strings.ToLower(strings.TrimSpace(demo.Email))

	var existing auth.User
	err := tx.First(&existing, "email = ?", email).Error
	if err == nil {
		s.log.Info("demo user exists, skipping", slog.String("email", email))
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("look up demo user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, fmt.Errorf("hash demo password: %w", err)
	}
	h := string(hashed)
	now := s.now().UTC()
	u := &auth.User{
		UserID:         utils.NewID("user"),
		Email:          email,
		Name:           demo.Name,
		HashedPassword: &h,
		IsPremium:      demo.Premium,
		CreatedAt:      now,
	}
	if demo.Premium {
		u.PremiumSince = &now
	}
	if err := tx.Create(u).Error; err != nil {
		return nil, false, fmt.Errorf("create demo user: %w", err)
	}
	return u, true, nil
}

func (s *Seeder) post(p WelcomePost, author *auth.User, at time.Time) (*forum.Post, error) {
	content := strings.TrimSpace(p.Content)
	html, err := s.markdown.Render(content)
	if err != nil {
		return nil, fmt.Errorf("render post %s: %w", p.ID, err)
	}
	post := &forum.Post{
		PostID:      p.ID,
		UserID:      author.UserID,
		UserName:    author.Name,
		Title:       p.Title,
		Content:     content,
		ContentHTML: html,
		Tags:        pq.StringArray(p.Tags),
		UpvotedBy:   pq.StringArray{},
		CreatedAt:   at,
	}
	if post.Tags == nil {
		post.Tags = pq.StringArray{}
	}
	if p.ScriptureRef != "" {
		ref := p.ScriptureRef
		post.ScriptureRef = &ref
	}
	return post, nil
}
