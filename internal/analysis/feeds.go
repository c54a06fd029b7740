package analysis

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/mmcdole/gofeed"

	"github.com/matth2611/Holy-navigator/internal/security"
)

const (
	maxFeedBytes   = 5 << 20
	maxHeadlines   = 20
	maxSummaryRune = 300
)

// FeedReader loads RSS/Atom/JSON feeds. Trusted is used for the configured
// default feed, Untrusted (SSRF-guarded) for URLs supplied by users.
type FeedReader struct {
	Trusted   *http.Client
	Untrusted *http.Client
	Sanitizer *security.Sanitizer
}

func (f *FeedReader) Headlines(ctx context.Context, feedURL string, userSupplied bool) ([]Headline, error) {
	client := f.Trusted
	if userSupplied {
		if err := security.ValidateURL(feedURL); err != nil {
			return nil, err
		}
		client = f.Untrusted
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/feed+json, application/xml;q=0.9, */*;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed: status %d", resp.StatusCode)
	}

	parsed, err := gofeed.NewParser().Parse(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	out := make([]Headline, 0, min(len(parsed.Items), maxHeadlines))
	for _, item := range parsed.Items {
		if len(out) == maxHeadlines {
			break
		}
		title := f.Sanitizer.PlainText(item.Title)
		if title == "" {
			continue
		}
		summary := f.Sanitizer.PlainText(item.Description)
		if r := []rune(summary); len(r) > maxSummaryRune {
			summary = string(r[:maxSummaryRune]) + "..."
		}
		h := Headline{Title: title, Summary: summary, Link: item.Link}
		if item.PublishedParsed != nil {
			t := item.PublishedParsed.UTC()
			h.Published = &t
		}
		out = append(out, h)
	}
	return out, nil
}
