package bible

import (
	"math"
	"regexp"
	"sort"

	"golang.org/x/text/cases"
)

// Okapi BM25 parameters.
const (
	bm25K1      = 1.2
	bm25B       = 0.75
	bm25Epsilon = 0.25

	// The reference is indexed with a lower weight than the verse text.
	textWeight      = 2
	referenceWeight = 1
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Passage is one searchable verse.
type Passage struct {
	Reference string `json:"reference"`
	Text      string `json:"text"`
	Book      string `json:"book"`
	Chapter   int    `json:"chapter"`
	Verse     int    `json:"verse"`
}

// SearchIndex ranks passages against free-text queries.
// It is immutable after construction and safe for concurrent use.
type SearchIndex struct {
	passages  []Passage
	termFreqs []map[string]int
	lengths   []int
	avgLength float64
	idf       map[string]float64
}

// NewSearchIndex indexes passages. Duplicate references keep the first text.
func NewSearchIndex(passages []Passage) *SearchIndex {
	idx := &SearchIndex{idf: make(map[string]float64)}

	seen := make(map[string]bool, len(passages))
	docFreq := make(map[string]int)
	var total int

	for _, p := range passages {
		if seen[p.Reference] {
			continue
		}
		seen[p.Reference] = true

		tokens := compositeTokens(p)
		tf := make(map[string]int)
		for _, tok := range tokens {
			if tf[tok] == 0 {
				docFreq[tok]++
			}
			tf[tok]++
		}

		idx.passages = append(idx.passages, p)
		idx.termFreqs = append(idx.termFreqs, tf)
		idx.lengths = append(idx.lengths, len(tokens))
		total += len(tokens)
	}

	n := float64(len(idx.passages))
	if n > 0 {
		idx.avgLength = float64(total) / n
	}
	for term, df := range docFreq {
		v := math.Log(1 + (n-float64(df)+0.5)/(float64(df)+0.5))
		if v < 0 {
			v = bm25Epsilon
		}
		idx.idf[term] = v
	}
	return idx
}

func (idx *SearchIndex) Len() int { return len(idx.passages) }

// Search returns at most limit passages with a positive score, best first.
func (idx *SearchIndex) Search(query string, limit int) []Passage {
	terms := tokenize(query)
	if len(terms) == 0 {
		return nil
	}

	type hit struct {
		i     int
		score float64
	}
	var hits []hit
	for i := range idx.passages {
		if s := idx.score(i, terms); s > 0 {
			hits = append(hits, hit{i: i, score: s})
		}
	}

	sort.SliceStable(hits, func(a, b int) bool { return hits[a].score > hits[b].score })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	out := make([]Passage, len(hits))
	for i, h := range hits {
		out[i] = idx.passages[h.i]
	}
	return out
}

func (idx *SearchIndex) score(i int, terms []string) float64 {
	tf := idx.termFreqs[i]
	dl := float64(idx.lengths[i])

	var score float64
	for _, term := range terms {
		f := float64(tf[term])
		if f == 0 {
			continue
		}
		norm := f + bm25K1*(1-bm25B+bm25B*dl/idx.avgLength)
		score += idx.idf[term] * f * (bm25K1 + 1) / norm
	}
	return score
}

func compositeTokens(p Passage) []string {
	var out []string
	text := tokenize(p.Text)
	for range textWeight {
		out = append(out, text...)
	}
	ref := tokenize(p.Reference)
	for range referenceWeight {
		out = append(out, ref...)
	}
	return out
}

func tokenize(s string) []string {
	return tokenPattern.FindAllString(cases.Fold().String(s), -1)
}
