package catalog

import "math/rand/v2"

// ByID returns the first book with the given ID, or nil.
func ByID(books []Book, id string) *Book {
	for i := range books {
		if books[i].ID == id {
			return &books[i]
		}
	}
	return nil
}

// ByMood returns the books tagged with mood, in catalog order.
func ByMood(books []Book, mood string) []Book {
	var out []Book
	for _, b := range books {
		if b.HasTag(mood) {
			out = append(out, b)
		}
	}
	return out
}

// ByFormat returns the books of format f, in catalog order.
func ByFormat(books []Book, f Format) []Book {
	var out []Book
	for _, b := range books {
		if b.Format == f {
			out = append(out, b)
		}
	}
	return out
}

// MoodCounts returns how many books carry each mood tag.
func MoodCounts(books []Book) map[string]int {
	counts := make(map[string]int, len(Moods))
	for _, b := range books {
		for _, t := range b.Tags {
			counts[t]++
		}
	}
	return counts
}

// Random picks one book using r. Returns nil for an empty catalog.
func Random(books []Book, r *rand.Rand) *Book {
	if len(books) == 0 {
		return nil
	}
	b := books[r.IntN(len(books))]
	return &b
}

// Related returns up to limit other books sharing at least one tag with
// book. When r is non-nil the candidates are shuffled first; otherwise they
// keep catalog order.
func Related(books []Book, book Book, limit int, r *rand.Rand) []Book {
	var related []Book
	for _, b := range books {
		if b.ID == book.ID {
			continue
		}
		for _, t := range b.Tags {
			if book.HasTag(t) {
				related = append(related, b)
				break
			}
		}
	}
	if r != nil {
		r.Shuffle(len(related), func(i, j int) {
			related[i], related[j] = related[j], related[i]
		})
	}
	if limit >= 0 && len(related) > limit {
		related = related[:limit]
	}
	return related
}
