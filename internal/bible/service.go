package bible

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/matth2611/Holy-navigator/internal/apperr"
)

const (
	TranslationName  = "World English Bible"
	placeholderCount = 10
	// Psalm 119 is the longest chapter.
	maxVerse = 176

	SourceRemote   = "remote"
	SourceFallback = "fallback"
)

// FallbackRecorder counts requests served from offline text.
type FallbackRecorder interface {
	RecordBibleFallback()
}

type ChapterResponse struct {
	Book        string  `json:"book"`
	Chapter     int     `json:"chapter"`
	Translation string  `json:"translation"`
	Verses      []Verse `json:"verses"`
	Source      string  `json:"source"`
}

type VerseResponse struct {
	Reference   string `json:"reference"`
	Book        string `json:"book"`
	Chapter     int    `json:"chapter"`
	Verse       int    `json:"verse"`
	Text        string `json:"text"`
	Translation string `json:"translation"`
	Source      string `json:"source"`
}

// Service resolves passages remotely and falls back to the embedded text.
type Service struct {
	catalog  *Catalog
	provider Provider
	samples  *Samples
	metrics  FallbackRecorder
	log      *slog.Logger
}

func NewService(catalog *Catalog, provider Provider, samples *Samples, metrics FallbackRecorder, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		catalog:  catalog,
		provider: provider,
		samples:  samples,
		metrics:  metrics,
		log:      log,
	}
}

func (s *Service) resolve(name string, chapter int) (Book, error) {
	book, ok := s.catalog.Lookup(name)
	if !ok {
		return Book{}, apperr.NotFound("Book not found")
	}
	if chapter < 1 || chapter > book.Chapters {
		return Book{}, apperr.NotFound("Chapter not found")
	}
	return book, nil
}

func (s *Service) Chapter(ctx context.Context, name string, chapter int) (*ChapterResponse, error) {
	book, err := s.resolve(name, chapter)
	if err != nil {
		return nil, err
	}

	resp := &ChapterResponse{
		Book:        book.Name,
		Chapter:     chapter,
		Translation: TranslationName,
		Source:      SourceRemote,
	}

	verses, err := s.provider.Passage(ctx, book.Name, chapter, 0)
	if err == nil && len(verses) > 0 {
		resp.Verses = verses
		return resp, nil
	}
	s.fellBack(ctx, book.Name, chapter, err)

	resp.Source = SourceFallback
	if sample, ok := s.samples.Chapter(book.Name, chapter); ok {
		resp.Verses = sample
	} else {
		resp.Verses = placeholderVerses(book.Name, chapter, placeholderCount)
	}
	return resp, nil
}

func (s *Service) Verse(ctx context.Context, name string, chapter, verse int) (*VerseResponse, error) {
	book, err := s.resolve(name, chapter)
	if err != nil {
		return nil, err
	}
	if verse < 1 {
		return nil, apperr.Validation("Verse must be a positive number")
	}
	if verse > maxVerse {
		return nil, apperr.NotFound("Verse not found")
	}

	resp := &VerseResponse{
		Reference:   fmt.Sprintf("%s %d:%d", book.Name, chapter, verse),
		Book:        book.Name,
		Chapter:     chapter,
		Verse:       verse,
		Translation: TranslationName,
		Source:      SourceRemote,
	}

	verses, err := s.provider.Passage(ctx, book.Name, chapter, verse)
	if err == nil && len(verses) > 0 {
		resp.Text = verses[0].Text
		return resp, nil
	}
	s.fellBack(ctx, book.Name, chapter, err)

	resp.Source = SourceFallback
	if sample, ok := s.samples.Chapter(book.Name, chapter); ok {
		for _, v := range sample {
			if v.Verse == verse {
				resp.Text = v.Text
				return resp, nil
			}
		}
	}
	resp.Text = placeholderText(book.Name, chapter, verse)
	return resp, nil
}

func (s *Service) fellBack(ctx context.Context, book string, chapter int, err error) {
	attrs := []any{slog.String("book", book), slog.Int("chapter", chapter)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	} else {
		attrs = append(attrs, slog.String("error", "empty passage"))
	}
	s.log.WarnContext(ctx, "serving offline bible text", attrs...)
	if s.metrics != nil {
		s.metrics.RecordBibleFallback()
	}
}
