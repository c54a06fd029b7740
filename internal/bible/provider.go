package bible

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Provider fetches verse text from a remote service.
type Provider interface {
	// Passage returns the verses of book chapter, or a single verse when verse > 0.
	Passage(ctx context.Context, book string, chapter, verse int) ([]Verse, error)
}

// HTTPProvider talks to a bible-api.com compatible service.
type HTTPProvider struct {
	baseURL     string
	translation string
	client      *http.Client
}

func NewHTTPProvider(baseURL, translation string, client *http.Client) *HTTPProvider {
	return &HTTPProvider{
		baseURL:     strings.TrimRight(baseURL, "/"),
		translation: translation,
		client:      client,
	}
}

type passageResponse struct {
	Verses []struct {
		Chapter int    `json:"chapter"`
		Verse   int    `json:"verse"`
		Text    string `json:"text"`
	} `json:"verses"`
	Error string `json:"error"`
}

func (p *HTTPProvider) Passage(ctx context.Context, book string, chapter, verse int) ([]Verse, error) {
	ref := url.PathEscape(strings.ToLower(book)) + "+" + strconv.Itoa(chapter)
	if verse > 0 {
		ref += ":" + strconv.Itoa(verse)
	}
	endpoint := p.baseURL + "/" + ref + "?translation=" + url.QueryEscape(p.translation)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build passage request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch passage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("fetch passage: unexpected status %d", resp.StatusCode)
	}

	var body passageResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode passage: %w", err)
	}
	if body.Error != "" {
		return nil, fmt.Errorf("passage provider: %s", body.Error)
	}

	verses := make([]Verse, 0, len(body.Verses))
	for _, v := range body.Verses {
		text := strings.Join(strings.Fields(v.Text), " ")
		if text == "" {
			continue
		}
		verses = append(verses, Verse{Verse: v.Verse, Text: text})
	}
	return verses, nil
}
