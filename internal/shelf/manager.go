package shelf

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/blackwell-systems/readshelf/internal/catalog"
	"github.com/blackwell-systems/readshelf/internal/kv"
	"github.com/blackwell-systems/readshelf/internal/reactive"
	"github.com/blackwell-systems/readshelf/internal/validation"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

var (
	// ErrUnknownBook is returned when a completion names a book outside the
	// catalog.
	ErrUnknownBook = errors.New("unknown book")
	// ErrReflection is returned when reflection answers do not fit the
	// book's prompts.
	ErrReflection = errors.New("reflection does not fit prompts")
)

// Catalog is the book source used to look up reflection prompts.
type Catalog interface {
	Books() []catalog.Book
}

// Manager owns the shelf of the reader passed to Init. Every mutator
// publishes a new snapshot and then writes it to storage; a failed write is
// logged and the in-memory shelf is kept.
type Manager struct {
	store    kv.Store
	books    Catalog
	current  *reactive.Value[Shelf]
	validate *validation.Validator
	logger   *zap.Logger
	now      func() time.Time
	newID    func() (string, error)
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for storage warnings.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDGenerator overrides the completion id source.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(m *Manager) { m.newID = gen }
}

// NewManager creates a Manager. A nil store keeps shelves in memory only.
func NewManager(store kv.Store, books Catalog, opts ...Option) *Manager {
	if store == nil {
		store = kv.Nop{}
	}
	m := &Manager{
		store:    store,
		books:    books,
		current:  reactive.New(Empty()),
		validate: validation.New(),
		logger:   zap.NewNop(),
		now:      time.Now,
		newID:    completionID,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func completionID() (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate completion id: %w", err)
	}
	return "done-" + id, nil
}

// Shelf exposes the current snapshot.
func (m *Manager) Shelf() reactive.Readable[Shelf] {
	return m.current
}

// Init loads the shelf of studentID. Finished always comes from the
// completions registry, not from the stored shelf.
func (m *Manager) Init(studentID string) Shelf {
	s := Empty()
	err := kv.GetJSON(m.store, Key(studentID), &s)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		s = Empty()
	case err != nil:
		m.logger.Warn("ignoring unreadable shelf", zap.String("student_id", studentID), zap.Error(err))
		s = Empty()
	}

	s.Finished = completionsFor(m.completions(), studentID)
	s = s.normalize()
	m.current.Set(s)
	return s
}

// AddToFavourites puts bookID at the end of the favourites list, replacing
// any earlier entry for it.
func (m *Manager) AddToFavourites(bookID, studentID string) Shelf {
	return m.mutate(studentID, func(s Shelf) Shelf {
		s.Favourites = append(without(s.Favourites, bookID), Item{BookID: bookID, AddedAt: m.now().UTC()})
		return s
	})
}

// RemoveFromFavourites drops bookID from favourites if present.
func (m *Manager) RemoveFromFavourites(bookID, studentID string) Shelf {
	return m.mutate(studentID, func(s Shelf) Shelf {
		s.Favourites = without(s.Favourites, bookID)
		return s
	})
}

// AddToReading puts bookID at the end of the reading list, replacing any
// earlier entry for it.
func (m *Manager) AddToReading(bookID, studentID string) Shelf {
	return m.mutate(studentID, func(s Shelf) Shelf {
		now := m.now().UTC()
		s.Reading = append(without(s.Reading, bookID), Item{BookID: bookID, AddedAt: now, LastOpened: &now})
		return s
	})
}

// RemoveFromReading drops bookID from the reading list if present.
func (m *Manager) RemoveFromReading(bookID, studentID string) Shelf {
	return m.mutate(studentID, func(s Shelf) Shelf {
		s.Reading = without(s.Reading, bookID)
		return s
	})
}

// MarkOpened refreshes LastOpened of a reading-list entry, keeping its
// position. Books not on the reading list are left alone.
func (m *Manager) MarkOpened(bookID, studentID string) Shelf {
	if !IsReading(bookID, m.current.Get()) {
		return m.current.Get()
	}
	return m.mutate(studentID, func(s Shelf) Shelf {
		now := m.now().UTC()
		reading := slices.Clone(s.Reading)
		for i := range reading {
			if reading[i].BookID == bookID {
				reading[i].LastOpened = &now
			}
		}
		s.Reading = reading
		return s
	})
}

// RecordCompletion checks responses against the book's prompts, appends a
// completion to the registry and refreshes Finished. Every prompt must be
// answered exactly once within its word bounds.
func (m *Manager) RecordCompletion(bookID, studentID string, responses []Response) (Completion, error) {
	var book *catalog.Book
	if m.books != nil {
		book = catalog.ByID(m.books.Books(), bookID)
	}
	if book == nil {
		return Completion{}, fmt.Errorf("%w: %q", ErrUnknownBook, bookID)
	}

	checked, err := m.checkResponses(*book, responses)
	if err != nil {
		return Completion{}, err
	}

	id, err := m.newID()
	if err != nil {
		return Completion{}, err
	}
	c := Completion{
		ID:         id,
		StudentID:  studentID,
		BookID:     bookID,
		FinishedAt: m.now().UTC(),
		Responses:  checked,
	}

	registry := append(m.completions(), c)
	m.persist(CompletionsKey, registry)
	m.mutate(studentID, func(s Shelf) Shelf {
		s.Finished = completionsFor(registry, studentID)
		return s
	})

	m.logger.Info("completion recorded",
		zap.String("student_id", studentID),
		zap.String("book_id", bookID),
		zap.String("completion_id", c.ID))
	return c, nil
}

// MarkSeen flags every completion of studentID as seen.
func (m *Manager) MarkSeen(studentID string) Shelf {
	registry := m.completions()
	changed := false
	for i := range registry {
		if registry[i].StudentID == studentID && !registry[i].Seen {
			registry[i].Seen = true
			changed = true
		}
	}
	if !changed {
		return m.current.Get()
	}

	m.persist(CompletionsKey, registry)
	return m.mutate(studentID, func(s Shelf) Shelf {
		s.Finished = completionsFor(registry, studentID)
		return s
	})
}

func (m *Manager) checkResponses(book catalog.Book, responses []Response) ([]Response, error) {
	if err := m.validate.Validate(reflection{Responses: responses}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReflection, err)
	}

	answered := make(map[string]bool, len(responses))
	out := make([]Response, 0, len(responses))
	for _, r := range responses {
		p := book.PromptByID(r.PromptID)
		if p == nil {
			return nil, fmt.Errorf("%w: %q has no prompt %q", ErrReflection, book.ID, r.PromptID)
		}
		if answered[r.PromptID] {
			return nil, fmt.Errorf("%w: prompt %q answered twice", ErrReflection, r.PromptID)
		}
		answered[r.PromptID] = true

		r.WordCount = WordCount(r.Text)
		if !p.Accepts(r.WordCount) {
			return nil, fmt.Errorf("%w: %q needs %s, got %d", ErrReflection, p.ID, bounds(*p), r.WordCount)
		}
		out = append(out, r)
	}

	for _, p := range book.Prompts {
		if !answered[p.ID] {
			return nil, fmt.Errorf("%w: prompt %q not answered", ErrReflection, p.ID)
		}
	}
	return out, nil
}

type reflection struct {
	Responses []Response `json:"responses" validate:"dive"`
}

func bounds(p catalog.Prompt) string {
	if p.MaxWords == 0 {
		return fmt.Sprintf("at least %d words", p.MinWords)
	}
	return fmt.Sprintf("%d-%d words", p.MinWords, p.MaxWords)
}

// mutate publishes fn(current) and then persists it under studentID.
func (m *Manager) mutate(studentID string, fn func(Shelf) Shelf) Shelf {
	next := fn(m.current.Get()).normalize()
	m.current.Set(next)
	m.persist(Key(studentID), next)
	return next
}

func (m *Manager) completions() []Completion {
	var all []Completion
	err := kv.GetJSON(m.store, CompletionsKey, &all)
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		m.logger.Warn("ignoring unreadable completions", zap.Error(err))
		return nil
	}
	return all
}

func (m *Manager) persist(key string, v any) {
	if err := kv.SetJSON(m.store, key, v); err != nil {
		m.logger.Warn("failed to persist", zap.String("key", key), zap.Error(err))
	}
}

func completionsFor(all []Completion, studentID string) []Completion {
	out := []Completion{}
	for _, c := range all {
		if c.StudentID == studentID {
			out = append(out, c)
		}
	}
	return out
}
