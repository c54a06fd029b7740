// Package readingplan spreads the whole Bible over a year and tracks
// which days each user has completed.
package readingplan

import (
	"fmt"
	"strconv"

	"github.com/matth2611/Holy-navigator/internal/bible"
	"github.com/matth2611/Holy-navigator/internal/devotional"
)

const TotalDays = devotional.DaysInYear

// Segment is a run of chapters inside one book, e.g. Genesis "1-3".
type Segment struct {
	Book     string `json:"book"`
	Chapters string `json:"chapters"`
}

type Reading struct {
	Day      int       `json:"day"`
	Theme    string    `json:"theme"`
	Readings []Segment `json:"readings"`
}

type chapterRef struct {
	book    bible.Book
	chapter int
}

// Plan is generated once from the book catalog and never changes.
type Plan struct {
	days []Reading
}

// NewPlan assigns chapters in canonical order so that day d covers
// chapters [d*N/365, (d+1)*N/365).
func NewPlan(catalog *bible.Catalog) *Plan {
	var all []chapterRef
	for _, b := range catalog.Books() {
		for c := 1; c <= b.Chapters; c++ {
			all = append(all, chapterRef{book: b, chapter: c})
		}
	}

	n := len(all)
	days := make([]Reading, TotalDays)
	for d := range TotalDays {
		start := d * n / TotalDays
		end := (d + 1) * n / TotalDays
		days[d] = buildReading(d+1, all[start:end])
	}
	return &Plan{days: days}
}

func buildReading(day int, chapters []chapterRef) Reading {
	r := Reading{Day: day}
	if len(chapters) == 0 {
		return r
	}
	r.Theme = fmt.Sprintf("%s: %s", chapters[0].book.Section, chapters[0].book.Name)

	first := chapters[0]
	last := first
	flush := func() {
		span := strconv.Itoa(first.chapter)
		if last.chapter != first.chapter {
			span += "-" + strconv.Itoa(last.chapter)
		}
		r.Readings = append(r.Readings, Segment{Book: first.book.Name, Chapters: span})
	}
	for _, c := range chapters[1:] {
		if c.book.Name != first.book.Name {
			flush()
			first = c
		}
		last = c
	}
	flush()
	return r
}

// Day returns the reading for day 1..365.
func (p *Plan) Day(day int) (Reading, bool) {
	if day < 1 || day > len(p.days) {
		return Reading{}, false
	}
	return p.days[day-1], true
}

// Page returns readings for a 1-based page of size limit and the page count.
func (p *Plan) Page(page, limit int) ([]Reading, int) {
	pages := (len(p.days) + limit - 1) / limit
	if page < 1 || page > pages {
		return []Reading{}, pages
	}
	start := (page - 1) * limit
	end := min(start+limit, len(p.days))
	out := make([]Reading, end-start)
	copy(out, p.days[start:end])
	return out, pages
}

func (p *Plan) Len() int { return len(p.days) }
