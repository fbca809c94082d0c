// Package search ranks catalog entries against a free-text query using
// typo-tolerant approximate matching.
package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/blackwell-systems/readshelf/internal/catalog"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultThreshold accepts a field when roughly 40% of the query is wrong.
// 0 requires a perfect match; 1 matches anything.
const DefaultThreshold = 0.4

// Relative importance of each searched field.
const (
	WeightTitle   = 4
	WeightAuthor  = 3
	WeightSummary = 2
	WeightTags    = 1

	totalWeight = WeightTitle + WeightAuthor + WeightSummary + WeightTags
)

// Result is one ranked entry.
type Result struct {
	Book  catalog.Book
	Score float64 // 0..1, higher is more relevant
}

// Matcher scores books against queries. The zero value is not usable; use
// NewMatcher.
type Matcher struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// NewMatcher builds a matcher. threshold outside (0, 1] falls back to
// DefaultThreshold.
func NewMatcher(threshold float64) *Matcher {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	dmp := diffmatchpatch.New()
	dmp.MatchThreshold = threshold
	// Long summaries should not be penalised for a late hit.
	dmp.MatchDistance = 1000
	return &Matcher{dmp: dmp}
}

// Match returns the candidates that match query, most relevant first. Ties
// keep candidate order. An empty query returns a copy of candidates.
func (m *Matcher) Match(query string, candidates []catalog.Book) []catalog.Book {
	results := m.Rank(query, candidates)
	out := make([]catalog.Book, len(results))
	for i, r := range results {
		out[i] = r.Book
	}
	return out
}

// Rank is Match with the combined scores attached.
func (m *Matcher) Rank(query string, candidates []catalog.Book) []Result {
	pattern := m.pattern(query)
	if pattern == "" {
		out := make([]Result, len(candidates))
		for i, b := range candidates {
			out[i] = Result{Book: b, Score: 1}
		}
		return out
	}

	var out []Result
	for _, b := range candidates {
		if score, ok := m.score(pattern, b); ok {
			out = append(out, Result{Book: b, Score: score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Score reports how well b matches query and whether it matches at all.
func (m *Matcher) Score(query string, b catalog.Book) (float64, bool) {
	pattern := m.pattern(query)
	if pattern == "" {
		return 1, true
	}
	return m.score(pattern, b)
}

func (m *Matcher) score(pattern string, b catalog.Book) (float64, bool) {
	var total float64
	matched := false

	add := func(weight int, s float64, ok bool) {
		if ok {
			matched = true
			total += float64(weight) * s
		}
	}

	s, ok := m.field(b.Title, pattern)
	add(WeightTitle, s, ok)
	s, ok = m.field(b.Author, pattern)
	add(WeightAuthor, s, ok)
	s, ok = m.field(b.Summary, pattern)
	add(WeightSummary, s, ok)

	best, anyTag := 0.0, false
	for _, tag := range b.Tags {
		if s, ok := m.field(tag, pattern); ok {
			anyTag = true
			if s > best {
				best = s
			}
		}
	}
	add(WeightTags, best, anyTag)

	return total / totalWeight, matched
}

// field locates pattern in text with Bitap and grades the hit by edit
// distance against the aligned window.
func (m *Matcher) field(text, pattern string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	text = strings.ToLower(text)
	loc := m.dmp.MatchMain(text, pattern, 0)
	if loc < 0 {
		return 0, false
	}

	end := loc + len(pattern)
	if end > len(text) {
		end = len(text)
	}
	window := text[loc:end]
	dist := m.dmp.DiffLevenshtein(m.dmp.DiffMain(pattern, window, false))

	s := 1 - float64(dist)/float64(len(pattern))
	if s < 0 {
		s = 0
	}
	return s, true
}

// pattern normalises a query and truncates it to what Bitap can handle.
func (m *Matcher) pattern(query string) string {
	p := strings.ToLower(strings.TrimSpace(query))
	limit := m.dmp.MatchMaxBits
	if len(p) <= limit {
		return p
	}
	p = p[:limit]
	for !utf8.ValidString(p) {
		p = p[:len(p)-1]
	}
	return strings.TrimSpace(p)
}
