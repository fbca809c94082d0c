package catalog

import "github.com/blackwell-systems/readshelf/internal/reactive"

// Store holds the catalog the rest of the program filters from. It is the
// only owner of the book list; readers get copies.
type Store struct {
	books *reactive.Value[[]Book]
}

// NewStore creates a store holding a copy of books.
func NewStore(books []Book) *Store {
	return &Store{books: reactive.New(clone(books))}
}

// Books returns a copy of the current catalog.
func (s *Store) Books() []Book {
	return clone(s.books.Get())
}

// Value exposes the catalog as an observable.
func (s *Store) Value() reactive.Readable[[]Book] {
	return s.books
}

// Replace swaps in a new catalog and notifies dependents.
func (s *Store) Replace(books []Book) {
	s.books.Set(clone(books))
}

// Len returns the number of catalog entries.
func (s *Store) Len() int {
	return len(s.books.Get())
}

func clone(books []Book) []Book {
	out := make([]Book, len(books))
	copy(out, books)
	return out
}
