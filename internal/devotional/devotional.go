// Package devotional serves the year of daily devotionals.
package devotional

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/matth2611/Holy-navigator/internal/bible"
)

const DaysInYear = 365

//go:embed data/devotionals.yaml
var devotionalsYAML []byte

type Devotional struct {
	Day        int    `json:"day" yaml:"day"`
	Title      string `json:"title" yaml:"title"`
	Scripture  string `json:"scripture" yaml:"scripture"`
	VerseText  string `json:"verse_text" yaml:"verse_text"`
	Reflection string `json:"reflection" yaml:"reflection"`
	Prayer     string `json:"prayer" yaml:"prayer"`
}

// Year holds exactly DaysInYear devotionals, day 1 first.
type Year struct {
	days []Devotional
}

// Load builds the year from the embedded handwritten entries and scripture pool.
func Load() (*Year, error) {
	var doc struct {
		Handwritten []Devotional `yaml:"handwritten"`
		Pool        []Devotional `yaml:"pool"`
	}
	if err := yaml.Unmarshal(devotionalsYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse embedded devotionals: %w", err)
	}
	return Build(doc.Handwritten, doc.Pool)
}

// Build numbers the handwritten entries in order and fills the rest of
// the year by cycling through pool.
func Build(handwritten, pool []Devotional) (*Year, error) {
	if len(handwritten) < DaysInYear && len(pool) == 0 {
		return nil, fmt.Errorf("devotional pool is empty with only %d handwritten days", len(handwritten))
	}

	days := make([]Devotional, 0, DaysInYear)
	for _, d := range handwritten {
		if len(days) == DaysInYear {
			break
		}
		d.Day = len(days) + 1
		days = append(days, d)
	}
	for i := 0; len(days) < DaysInYear; i++ {
		d := pool[i%len(pool)]
		d.Day = len(days) + 1
		days = append(days, d)
	}
	return &Year{days: days}, nil
}

func (y *Year) All() []Devotional {
	out := make([]Devotional, len(y.days))
	copy(out, y.days)
	return out
}

// Day returns the devotional for day 1..365.
func (y *Year) Day(day int) (Devotional, bool) {
	if day < 1 || day > len(y.days) {
		return Devotional{}, false
	}
	return y.days[day-1], true
}

// DayOfYear maps t to a plan day in UTC. Day 366 of a leap year repeats day 365.
func DayOfYear(t time.Time) int {
	day := t.UTC().YearDay()
	if day > DaysInYear {
		day = DaysInYear
	}
	return day
}

// Today returns the devotional for now.
func (y *Year) Today(now time.Time) Devotional {
	d, _ := y.Day(DayOfYear(now))
	return d
}

// Passages exposes the devotional verses for the verse search index.
func (y *Year) Passages(catalog *bible.Catalog) []bible.Passage {
	var out []bible.Passage
	seen := make(map[string]bool)
	for _, d := range y.days {
		if seen[d.Scripture] {
			continue
		}
		seen[d.Scripture] = true

		name, chapter, verse, ok := bible.ParseReference(d.Scripture)
		if !ok {
			continue
		}
		if book, found := catalog.Lookup(name); found {
			name = book.Name
		}
		out = append(out, bible.Passage{
			Reference: d.Scripture,
			Text:      d.VerseText,
			Book:      name,
			Chapter:   chapter,
			Verse:     verse,
		})
	}
	return out
}
