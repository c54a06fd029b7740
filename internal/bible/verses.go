package bible

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

//go:embed data/verses.yaml
var versesYAML []byte

type Verse struct {
	Verse int    `json:"verse" yaml:"verse"`
	Text  string `json:"text" yaml:"text"`
}

type sampleChapter struct {
	Book    string  `yaml:"book"`
	Chapter int     `yaml:"chapter"`
	Verses  []Verse `yaml:"verses"`
}

// Samples is the embedded offline text, keyed by book and chapter.
type Samples struct {
	chapters map[string][]Verse
	order    []sampleChapter
}

func LoadSamples() (*Samples, error) {
	var doc struct {
		Chapters []sampleChapter `yaml:"chapters"`
	}
	if err := yaml.Unmarshal(versesYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse embedded verses: %w", err)
	}

	s := &Samples{chapters: make(map[string][]Verse, len(doc.Chapters)), order: doc.Chapters}
	for _, ch := range doc.Chapters {
		s.chapters[chapterKey(ch.Book, ch.Chapter)] = ch.Verses
	}
	return s, nil
}

func (s *Samples) Chapter(book string, chapter int) ([]Verse, bool) {
	v, ok := s.chapters[chapterKey(book, chapter)]
	return v, ok
}

// Passages flattens the samples for the search index.
func (s *Samples) Passages() []Passage {
	var out []Passage
	for _, ch := range s.order {
		for _, v := range ch.Verses {
			out = append(out, Passage{
				Reference: fmt.Sprintf("%s %d:%d", ch.Book, ch.Chapter, v.Verse),
				Text:      v.Text,
				Book:      ch.Book,
				Chapter:   ch.Chapter,
				Verse:     v.Verse,
			})
		}
	}
	return out
}

func chapterKey(book string, chapter int) string {
	return foldName(book) + "|" + strconv.Itoa(chapter)
}

func placeholderVerses(book string, chapter, count int) []Verse {
	verses := make([]Verse, count)
	for i := range verses {
		verses[i] = Verse{Verse: i + 1, Text: placeholderText(book, chapter, i+1)}
	}
	return verses
}

func placeholderText(book string, chapter, verse int) string {
	return fmt.Sprintf("%s %d:%d is not available offline. Please try again later.", book, chapter, verse)
}

// ParseReference splits "1 Corinthians 13:4-5" into book, chapter and
// first verse. Verse is 0 for a whole-chapter reference.
func ParseReference(ref string) (book string, chapter, verse int, ok bool) {
	ref = strings.TrimSpace(ref)
	sp := strings.LastIndex(ref, " ")
	if sp <= 0 {
		return "", 0, 0, false
	}
	book, loc := ref[:sp], ref[sp+1:]

	chapterPart, versePart, hasVerse := strings.Cut(loc, ":")
	chapter, err := strconv.Atoi(chapterPart)
	if err != nil || chapter < 1 {
		return "", 0, 0, false
	}
	if hasVerse {
		first, _, _ := strings.Cut(versePart, "-")
		verse, err = strconv.Atoi(first)
		if err != nil || verse < 1 {
			return "", 0, 0, false
		}
	}
	return book, chapter, verse, true
}
