// Package dictionary serves the embedded Bible dictionary.
package dictionary

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
	"golang.org/x/text/cases"
)

//go:embed data/entries.yaml
var entriesYAML []byte

type Entry struct {
	Key        string   `json:"-" yaml:"key"`
	Word       string   `json:"word" yaml:"word"`
	Definition string   `json:"definition" yaml:"definition"`
	Hebrew     string   `json:"hebrew" yaml:"hebrew"`
	Greek      string   `json:"greek" yaml:"greek"`
	References []string `json:"references" yaml:"references"`
}

// Dictionary is loaded once and never modified.
type Dictionary struct {
	entries []Entry
	byKey   map[string]int
}

func Load() (*Dictionary, error) {
	var doc struct {
		Entries []Entry `yaml:"entries"`
	}
	if err := yaml.Unmarshal(entriesYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse embedded dictionary: %w", err)
	}
	return New(doc.Entries)
}

func New(entries []Entry) (*Dictionary, error) {
	d := &Dictionary{byKey: make(map[string]int, len(entries))}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return fold(sorted[i].Word) < fold(sorted[j].Word)
	})

	for i, e := range sorted {
		if e.Key == "" {
			e.Key = e.Word
			sorted[i].Key = e.Word
		}
		key := fold(e.Key)
		if _, dup := d.byKey[key]; dup {
			return nil, fmt.Errorf("duplicate dictionary key %q", e.Key)
		}
		d.byKey[key] = i
	}
	d.entries = sorted
	return d, nil
}

// All returns every entry sorted by word.
func (d *Dictionary) All() []Entry {
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

func (d *Dictionary) Lookup(word string) (Entry, bool) {
	i, ok := d.byKey[fold(word)]
	if !ok {
		return Entry{}, false
	}
	return d.entries[i], true
}

// Search matches q as a substring of the key or the definition.
func (d *Dictionary) Search(q string) []Entry {
	needle := fold(q)
	results := []Entry{}
	if needle == "" {
		return results
	}
	for _, e := range d.entries {
		if strings.Contains(fold(e.Key), needle) || strings.Contains(fold(e.Definition), needle) {
			results = append(results, e)
		}
	}
	return results
}

func (d *Dictionary) Len() int { return len(d.entries) }

func fold(s string) string {
	return cases.Fold().String(strings.Join(strings.Fields(s), " "))
}
