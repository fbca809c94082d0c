package filter

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/blackwell-systems/readshelf/internal/catalog"
)

// Sort is the ordering applied last in the pipeline.
type Sort string

const (
	SortNew      Sort = "new"
	SortPopular  Sort = "popular"
	SortAZ       Sort = "a-z"
	SortUnder100 Sort = "under-100"
)

// Sorts lists every sort mode in display order.
var Sorts = []Sort{SortNew, SortPopular, SortAZ, SortUnder100}

// ErrUnknownSort is returned for a sort mode outside Sorts.
var ErrUnknownSort = errors.New("unknown sort mode")

// ParseSort converts a user-supplied string to a Sort.
func ParseSort(s string) (Sort, error) {
	mode := Sort(strings.ToLower(strings.TrimSpace(s)))
	if mode.Valid() {
		return mode, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSort, s)
}

// Valid reports whether s is a known sort mode.
func (s Sort) Valid() bool {
	return slices.Contains(Sorts, s)
}

// State is an immutable snapshot of the user's filter selection. Build new
// snapshots with the With* methods; never modify the slices in place.
type State struct {
	Search  string           `json:"search"`
	Moods   []string         `json:"moods"`
	Formats []catalog.Format `json:"formats"`
	Sort    Sort             `json:"sort"`
}

// Initial is the state with nothing selected.
func Initial() State {
	return State{Sort: SortNew}
}

// IsEmpty reports whether no search, mood or format is selected.
func (s State) IsEmpty() bool {
	return strings.TrimSpace(s.Search) == "" && len(s.Moods) == 0 && len(s.Formats) == 0
}

// WithSearch returns a copy with the search text replaced.
func (s State) WithSearch(q string) State {
	s.Moods = slices.Clone(s.Moods)
	s.Formats = slices.Clone(s.Formats)
	s.Search = q
	return s
}

// WithMoodToggled returns a copy with mood added, or removed if present.
func (s State) WithMoodToggled(mood string) State {
	s.Formats = slices.Clone(s.Formats)
	s.Moods = toggle(s.Moods, mood)
	return s
}

// WithFormatToggled returns a copy with f added, or removed if present.
func (s State) WithFormatToggled(f catalog.Format) State {
	s.Moods = slices.Clone(s.Moods)
	s.Formats = toggle(s.Formats, f)
	return s
}

// WithSort returns a copy using sort mode m.
func (s State) WithSort(m Sort) State {
	s.Moods = slices.Clone(s.Moods)
	s.Formats = slices.Clone(s.Formats)
	s.Sort = m
	return s
}

func toggle[T comparable](in []T, v T) []T {
	if i := slices.Index(in, v); i >= 0 {
		out := make([]T, 0, len(in)-1)
		out = append(out, in[:i]...)
		return append(out, in[i+1:]...)
	}
	out := make([]T, 0, len(in)+1)
	out = append(out, in...)
	return append(out, v)
}
