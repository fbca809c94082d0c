// Package filter derives the visible book list from the catalog and the
// user's filter selection.
package filter

import (
	"slices"
	"sort"
	"strings"

	"github.com/blackwell-systems/readshelf/internal/catalog"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Matcher narrows and reorders candidates by relevance to a text query.
type Matcher interface {
	Match(query string, candidates []catalog.Book) []catalog.Book
}

// UnderPages is the exclusive page limit of SortUnder100.
const UnderPages = 100

// Derive applies, in order: fuzzy search, mood filter, format filter, sort.
// Neither books nor st is modified. An unrecognised sort mode leaves the
// filtered order as is.
func Derive(books []catalog.Book, st State, m Matcher) []catalog.Book {
	out := slices.Clone(books)
	if out == nil {
		out = []catalog.Book{}
	}

	if q := strings.TrimSpace(st.Search); q != "" && m != nil {
		out = m.Match(q, out)
	}

	if len(st.Moods) > 0 {
		out = keep(out, func(b catalog.Book) bool {
			return slices.ContainsFunc(st.Moods, b.HasTag)
		})
	}

	if len(st.Formats) > 0 {
		out = keep(out, func(b catalog.Book) bool {
			return slices.Contains(st.Formats, b.Format)
		})
	}

	switch st.Sort {
	case SortNew:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	case SortPopular:
		// No popularity signal exists yet; alphabetical stands in.
		byTitle(out)
	case SortAZ:
		byTitle(out)
	case SortUnder100:
		out = keep(out, func(b catalog.Book) bool {
			n, ok := b.PageCount()
			return ok && n < UnderPages
		})
		sort.SliceStable(out, func(i, j int) bool {
			return *out[i].Pages < *out[j].Pages
		})
	}

	return out
}

func keep(books []catalog.Book, pred func(catalog.Book) bool) []catalog.Book {
	out := make([]catalog.Book, 0, len(books))
	for _, b := range books {
		if pred(b) {
			out = append(out, b)
		}
	}
	return out
}

// byTitle sorts by title using English collation rules.
func byTitle(books []catalog.Book) {
	c := collate.New(language.English)
	sort.SliceStable(books, func(i, j int) bool {
		return c.CompareString(books[i].Title, books[j].Title) < 0
	})
}
