package bible

import (
	"strings"

	"golang.org/x/text/cases"
)

type Testament string

const (
	OldTestament Testament = "Old"
	NewTestament Testament = "New"
)

// Book is one entry of the Protestant canon.
type Book struct {
	Name      string    `json:"name"`
	Chapters  int       `json:"chapters"`
	Testament Testament `json:"testament"`
	Section   string    `json:"-"`
}

var canon = []Book{
	{"Genesis", 50, OldTestament, "The Law"},
	{"Exodus", 40, OldTestament, "The Law"},
	{"Leviticus", 27, OldTestament, "The Law"},
	{"Numbers", 36, OldTestament, "The Law"},
	{"Deuteronomy", 34, OldTestament, "The Law"},
	{"Joshua", 24, OldTestament, "History"},
	{"Judges", 21, OldTestament, "History"},
	{"Ruth", 4, OldTestament, "History"},
	{"1 Samuel", 31, OldTestament, "History"},
	{"2 Samuel", 24, OldTestament, "History"},
	{"1 Kings", 22, OldTestament, "History"},
	{"2 Kings", 25, OldTestament, "History"},
	{"1 Chronicles", 29, OldTestament, "History"},
	{"2 Chronicles", 36, OldTestament, "History"},
	{"Ezra", 10, OldTestament, "History"},
	{"Nehemiah", 13, OldTestament, "History"},
	{"Esther", 10, OldTestament, "History"},
	{"Job", 42, OldTestament, "Poetry and Wisdom"},
	{"Psalms", 150, OldTestament, "Poetry and Wisdom"},
	{"Proverbs", 31, OldTestament, "Poetry and Wisdom"},
	{"Ecclesiastes", 12, OldTestament, "Poetry and Wisdom"},
	{"Song of Solomon", 8, OldTestament, "Poetry and Wisdom"},
	{"Isaiah", 66, OldTestament, "Major Prophets"},
	{"Jeremiah", 52, OldTestament, "Major Prophets"},
	{"Lamentations", 5, OldTestament, "Major Prophets"},
	{"Ezekiel", 48, OldTestament, "Major Prophets"},
	{"Daniel", 12, OldTestament, "Major Prophets"},
	{"Hosea", 14, OldTestament, "Minor Prophets"},
	{"Joel", 3, OldTestament, "Minor Prophets"},
	{"Amos", 9, OldTestament, "Minor Prophets"},
	{"Obadiah", 1, OldTestament, "Minor Prophets"},
	{"Jonah", 4, OldTestament, "Minor Prophets"},
	{"Micah", 7, OldTestament, "Minor Prophets"},
	{"Nahum", 3, OldTestament, "Minor Prophets"},
	{"Habakkuk", 3, OldTestament, "Minor Prophets"},
	{"Zephaniah", 3, OldTestament, "Minor Prophets"},
	{"Haggai", 2, OldTestament, "Minor Prophets"},
	{"Zechariah", 14, OldTestament, "Minor Prophets"},
	{"Malachi", 4, OldTestament, "Minor Prophets"},
	{"Matthew", 28, NewTestament, "The Gospels"},
	{"Mark", 16, NewTestament, "The Gospels"},
	{"Luke", 24, NewTestament, "The Gospels"},
	{"John", 21, NewTestament, "The Gospels"},
	{"Acts", 28, NewTestament, "The Early Church"},
	{"Romans", 16, NewTestament, "Letters of Paul"},
	{"1 Corinthians", 16, NewTestament, "Letters of Paul"},
	{"2 Corinthians", 13, NewTestament, "Letters of Paul"},
	{"Galatians", 6, NewTestament, "Letters of Paul"},
	{"Ephesians", 6, NewTestament, "Letters of Paul"},
	{"Philippians", 4, NewTestament, "Letters of Paul"},
	{"Colossians", 4, NewTestament, "Letters of Paul"},
	{"1 Thessalonians", 5, NewTestament, "Letters of Paul"},
	{"2 Thessalonians", 3, NewTestament, "Letters of Paul"},
	{"1 Timothy", 6, NewTestament, "Letters of Paul"},
	{"2 Timothy", 4, NewTestament, "Letters of Paul"},
	{"Titus", 3, NewTestament, "Letters of Paul"},
	{"Philemon", 1, NewTestament, "Letters of Paul"},
	{"Hebrews", 13, NewTestament, "General Letters"},
	{"James", 5, NewTestament, "General Letters"},
	{"1 Peter", 5, NewTestament, "General Letters"},
	{"2 Peter", 3, NewTestament, "General Letters"},
	{"1 John", 5, NewTestament, "General Letters"},
	{"2 John", 1, NewTestament, "General Letters"},
	{"3 John", 1, NewTestament, "General Letters"},
	{"Jude", 1, NewTestament, "General Letters"},
	{"Revelation", 22, NewTestament, "Prophecy"},
}

var aliases = map[string]string{
	"psalm":         "Psalms",
	"song of songs": "Song of Solomon",
	"revelations":   "Revelation",
}

// Catalog answers book lookups over the canon. It is read-only after construction.
type Catalog struct {
	books []Book
	index map[string]int
	total int
}

func NewCatalog() *Catalog {
	c := &Catalog{
		books: canon,
		index: make(map[string]int, len(canon)+len(aliases)),
	}
	for i, b := range canon {
		c.index[foldName(b.Name)] = i
		c.total += b.Chapters
	}
	for alias, name := range aliases {
		c.index[foldName(alias)] = c.index[foldName(name)]
	}
	return c
}

// Books returns the canon in order.
func (c *Catalog) Books() []Book {
	out := make([]Book, len(c.books))
	copy(out, c.books)
	return out
}

// Lookup finds a book by name, ignoring case and spacing.
func (c *Catalog) Lookup(name string) (Book, bool) {
	i, ok := c.index[foldName(name)]
	if !ok {
		return Book{}, false
	}
	return c.books[i], true
}

// Position returns the canonical index of the book, or -1.
func (c *Catalog) Position(name string) int {
	i, ok := c.index[foldName(name)]
	if !ok {
		return -1
	}
	return i
}

func (c *Catalog) TotalChapters() int { return c.total }

func (c *Catalog) TotalBooks() int { return len(c.books) }

// foldName also accepts "+" and "_" as word separators ("1+John", "Song_of_Solomon").
func foldName(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '+' || r == '_' || r == '\t'
	})
	return cases.Fold().String(strings.Join(words, " "))
}
