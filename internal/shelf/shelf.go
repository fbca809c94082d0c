// Package shelf keeps each reader's favourites, reading list and finished
// books.
package shelf

import (
	"slices"
	"strings"
	"time"
)

// CompletionsKey is the storage key of the completions registry shared by
// every reader on the device.
const CompletionsKey = "completions"

// Key returns the storage key of a reader's shelf.
func Key(studentID string) string {
	return "shelf-" + studentID
}

// Item is one book on the favourites or reading list.
type Item struct {
	BookID     string     `json:"bookId"`
	AddedAt    time.Time  `json:"addedAt"`
	LastOpened *time.Time `json:"lastOpened,omitempty"`
}

// Response is the reader's answer to one reflection prompt.
type Response struct {
	PromptID  string `json:"promptId" validate:"required"`
	Text      string `json:"text" validate:"required"`
	WordCount int    `json:"wordCount"`
}

// Completion records one finished reading. A book may be finished more than
// once.
type Completion struct {
	ID         string     `json:"id"`
	StudentID  string     `json:"studentId"`
	BookID     string     `json:"bookId"`
	FinishedAt time.Time  `json:"finishedAt"`
	Responses  []Response `json:"responses"`
	Seen       bool       `json:"seen"`
}

// Shelf is an immutable snapshot of one reader's collections. Each BookID
// appears at most once in Favourites and at most once in Reading.
type Shelf struct {
	Favourites []Item       `json:"favourites"`
	Reading    []Item       `json:"reading"`
	Finished   []Completion `json:"finished"`
}

// Empty returns a shelf with no entries.
func Empty() Shelf {
	return Shelf{Favourites: []Item{}, Reading: []Item{}, Finished: []Completion{}}
}

// normalize replaces nil collections with empty ones.
func (s Shelf) normalize() Shelf {
	if s.Favourites == nil {
		s.Favourites = []Item{}
	}
	if s.Reading == nil {
		s.Reading = []Item{}
	}
	if s.Finished == nil {
		s.Finished = []Completion{}
	}
	return s
}

func hasBook(items []Item, bookID string) bool {
	return slices.ContainsFunc(items, func(it Item) bool { return it.BookID == bookID })
}

// IsFavourite reports whether bookID is in s.Favourites.
func IsFavourite(bookID string, s Shelf) bool {
	return hasBook(s.Favourites, bookID)
}

// IsReading reports whether bookID is in s.Reading.
func IsReading(bookID string, s Shelf) bool {
	return hasBook(s.Reading, bookID)
}

// IsFinished reports whether s has at least one completion of bookID.
func IsFinished(bookID string, s Shelf) bool {
	return slices.ContainsFunc(s.Finished, func(c Completion) bool { return c.BookID == bookID })
}

// Unseen returns the completions not yet acknowledged, oldest first.
func Unseen(s Shelf) []Completion {
	var out []Completion
	for _, c := range s.Finished {
		if !c.Seen {
			out = append(out, c)
		}
	}
	return out
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// without returns items minus any entry for bookID, always as a new slice.
func without(items []Item, bookID string) []Item {
	out := make([]Item, 0, len(items)+1)
	for _, it := range items {
		if it.BookID != bookID {
			out = append(out, it)
		}
	}
	return out
}
