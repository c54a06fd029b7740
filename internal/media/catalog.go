// Package media serves the premium prophecy sermon library.
package media

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

//go:embed data/catalog.yaml
var catalogYAML []byte

const (
	KindVideo = "video"
	KindAudio = "audio"
)

type Item struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Preacher    string `json:"preacher" yaml:"preacher"`
	Description string `json:"description" yaml:"description"`
	Duration    string `json:"duration" yaml:"duration"`
	Category    string `json:"category" yaml:"category"`
	Thumbnail   string `json:"thumbnail,omitempty" yaml:"thumbnail"`
	VideoURL    string `json:"video_url,omitempty" yaml:"video_url"`
	AudioURL    string `json:"audio_url,omitempty" yaml:"audio_url"`
	Kind        string `json:"type" yaml:"-"`
	Watched     bool   `json:"watched" yaml:"-"`
}

type Catalog struct {
	Notice     string
	Categories []string
	videos     []Item
	audio      []Item
	byID       map[string]Item
}

func Load() (*Catalog, error) {
	var doc struct {
		Notice     string   `yaml:"notice"`
		Categories []string `yaml:"categories"`
		Videos     []Item   `yaml:"videos"`
		Audio      []Item   `yaml:"audio"`
	}
	if err := yaml.Unmarshal(catalogYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse embedded media catalog: %w", err)
	}
	return New(doc.Notice, doc.Categories, doc.Videos, doc.Audio)
}

func New(notice string, categories []string, videos, audio []Item) (*Catalog, error) {
	c := &Catalog{
		Notice:     notice,
		Categories: categories,
		byID:       make(map[string]Item, len(videos)+len(audio)),
	}
	add := func(items []Item, kind string) ([]Item, error) {
		out := make([]Item, 0, len(items))
		for _, it := range items {
			if _, dup := c.byID[it.ID]; dup || it.ID == "" {
				return nil, fmt.Errorf("media id %q is empty or duplicated", it.ID)
			}
			it.Kind = kind
			c.byID[it.ID] = it
			out = append(out, it)
		}
		return out, nil
	}

	var err error
	if c.videos, err = add(videos, KindVideo); err != nil {
		return nil, err
	}
	if c.audio, err = add(audio, KindAudio); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Videos returns copies filtered by category (case-insensitive; empty
// matches all) with Watched set from watched.
func (c *Catalog) Videos(category string, watched map[string]bool) []Item {
	return filter(c.videos, category, watched)
}

func (c *Catalog) Audio(category string, watched map[string]bool) []Item {
	return filter(c.audio, category, watched)
}

func filter(items []Item, category string, watched map[string]bool) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if category != "" && !strings.EqualFold(it.Category, category) {
			continue
		}
		it.Watched = watched[it.ID]
		out = append(out, it)
	}
	return out
}
