package filter

import (
	"errors"
	"fmt"

	"github.com/blackwell-systems/readshelf/internal/catalog"
	"github.com/blackwell-systems/readshelf/internal/reactive"
	"go.uber.org/zap"
)

// ErrUnknownMood is returned when toggling a tag outside catalog.Moods.
var ErrUnknownMood = errors.New("unknown mood")

// Pipeline owns the filter state and keeps the derived result list in sync
// with it and with the catalog. State changes only through its action
// methods.
type Pipeline struct {
	state   *reactive.Value[State]
	results *reactive.Derived[[]catalog.Book]
	logger  *zap.Logger
}

// NewPipeline wires books and a fresh filter state into a derived list.
// A nil logger is replaced by a no-op logger.
func NewPipeline(books reactive.Readable[[]catalog.Book], m Matcher, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	state := reactive.New(Initial())
	return &Pipeline{
		state: state,
		results: reactive.Derive2[[]catalog.Book, State, []catalog.Book](books, state,
			func(b []catalog.Book, st State) []catalog.Book {
				return Derive(b, st, m)
			}),
		logger: logger,
	}
}

// State exposes the current filter selection.
func (p *Pipeline) State() reactive.Readable[State] {
	return p.state
}

// Results exposes the derived book list. Subscribers must treat the slice
// as read-only.
func (p *Pipeline) Results() reactive.Readable[[]catalog.Book] {
	return p.results
}

// SetSearch replaces the free-text query.
func (p *Pipeline) SetSearch(q string) {
	p.state.Update(func(st State) State { return st.WithSearch(q) })
}

// ToggleMood selects or deselects a mood tag. Unknown tags leave the state
// untouched.
func (p *Pipeline) ToggleMood(mood string) error {
	canonical, ok := catalog.ParseMood(mood)
	if !ok {
		p.logger.Warn("ignoring unknown mood", zap.String("mood", mood))
		return fmt.Errorf("%w: %q", ErrUnknownMood, mood)
	}
	p.state.Update(func(st State) State { return st.WithMoodToggled(canonical) })
	return nil
}

// ToggleFormat selects or deselects a format.
func (p *Pipeline) ToggleFormat(f catalog.Format) error {
	if !f.Valid() {
		p.logger.Warn("ignoring unknown format", zap.String("format", string(f)))
		return fmt.Errorf("%w: %q", catalog.ErrUnknownFormat, f)
	}
	p.state.Update(func(st State) State { return st.WithFormatToggled(f) })
	return nil
}

// SetSort changes the sort mode. An unknown mode leaves state and results
// unchanged.
func (p *Pipeline) SetSort(s Sort) error {
	if !s.Valid() {
		p.logger.Warn("ignoring unknown sort mode", zap.String("sort", string(s)))
		return fmt.Errorf("%w: %q", ErrUnknownSort, s)
	}
	p.state.Update(func(st State) State { return st.WithSort(s) })
	return nil
}

// ClearFilters resets to the initial state.
func (p *Pipeline) ClearFilters() {
	p.state.Set(Initial())
}

// SurpriseMe clears every filter so the whole catalog is on show; callers
// then pick a random entry with catalog.Random.
func (p *Pipeline) SurpriseMe() {
	p.state.Set(Initial())
}

// Close detaches the derived list from the catalog.
func (p *Pipeline) Close() {
	p.results.Stop()
}
