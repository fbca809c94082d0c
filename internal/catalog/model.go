package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Format is the medium of a catalog entry.
type Format string

const (
	FormatBook      Format = "book"
	FormatComic     Format = "comic"
	FormatAudiobook Format = "audiobook"
)

// Formats lists every supported format in display order.
var Formats = []Format{FormatBook, FormatComic, FormatAudiobook}

// ErrUnknownFormat is returned when a format string is not one of Formats.
var ErrUnknownFormat = errors.New("unknown format")

// ParseFormat converts a user-supplied string to a Format (case-insensitive).
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f.Valid() {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

// Mood tags used by the built-in catalog.
const (
	MoodFunny       = "Funny"
	MoodAdventure   = "Adventure"
	MoodMagical     = "Magical"
	MoodThinky      = "Thinky"
	MoodTrueStories = "True Stories"
	MoodShortReads  = "Short Reads"
)

// Moods is the closed vocabulary of mood tags.
var Moods = []string{MoodFunny, MoodAdventure, MoodMagical, MoodThinky, MoodTrueStories, MoodShortReads}

// ParseMood matches s against Moods case-insensitively and returns the
// canonical spelling.
func ParseMood(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, m := range Moods {
		if strings.EqualFold(m, s) {
			return m, true
		}
	}
	return "", false
}

// Book is one entry in the catalog.
type Book struct {
	ID        string    `yaml:"id" json:"id"`
	Title     string    `yaml:"title" json:"title"`
	Author    string    `yaml:"author" json:"author"`
	Summary   string    `yaml:"summary" json:"summary"`
	Tags      []string  `yaml:"tags,omitempty" json:"tags,omitempty"`
	Format    Format    `yaml:"format" json:"format"`
	Pages     *int      `yaml:"pages,omitempty" json:"pages,omitempty"`
	CreatedAt time.Time `yaml:"created_at" json:"createdAt"`
	Prompts   []Prompt  `yaml:"prompts,omitempty" json:"prompts,omitempty"`
	DriveURL  string    `yaml:"drive_url,omitempty" json:"driveUrl,omitempty"`
	CoverURL  string    `yaml:"cover_url,omitempty" json:"coverUrl,omitempty"`
}

// Prompt is a reflection question asked when a book is finished.
type Prompt struct {
	ID       string `yaml:"id" json:"id"`
	Label    string `yaml:"label" json:"label"`
	MinWords int    `yaml:"min_words" json:"minWords"`
	MaxWords int    `yaml:"max_words" json:"maxWords"`
}

// Accepts reports whether a reflection of n words fits the prompt's bounds.
// A zero MaxWords means no upper bound.
func (p Prompt) Accepts(n int) bool {
	if n < p.MinWords {
		return false
	}
	return p.MaxWords == 0 || n <= p.MaxWords
}

// HasTag reports whether b carries tag (exact match).
func (b Book) HasTag(tag string) bool {
	for _, t := range b.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// PageCount returns the page count and whether one is known.
func (b Book) PageCount() (int, bool) {
	if b.Pages == nil {
		return 0, false
	}
	return *b.Pages, true
}

// PromptByID returns the book's prompt with the given ID, or nil.
func (b Book) PromptByID(id string) *Prompt {
	for i := range b.Prompts {
		if b.Prompts[i].ID == id {
			return &b.Prompts[i]
		}
	}
	return nil
}

// Pages is a convenience for building optional page counts.
func Pages(n int) *int {
	return &n
}
