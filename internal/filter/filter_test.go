package filter_test

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/readshelf/internal/catalog"
	"github.com/blackwell-systems/readshelf/internal/filter"
	"github.com/blackwell-systems/readshelf/internal/search"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// exampleCatalog is the two-entry scenario: A is short and funny, B is long
// and magical.
func exampleCatalog() []catalog.Book {
	return []catalog.Book{
		{ID: "A", Title: "Giggle Time", Author: "Pat Doe", Summary: "Jokes for everyone.",
			Tags: []string{"Funny", "Adventure"}, Format: catalog.FormatBook,
			Pages: catalog.Pages(85), CreatedAt: date("2024-01-01")},
		{ID: "B", Title: "Magic Castle", Author: "Kim Lee", Summary: "Wizards and towers.",
			Tags: []string{"Magical"}, Format: catalog.FormatBook,
			Pages: catalog.Pages(160), CreatedAt: date("2024-02-01")},
	}
}

func builtin(t *testing.T) []catalog.Book {
	t.Helper()
	books, err := catalog.Builtin()
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	return books
}

func ids(books []catalog.Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.ID
	}
	return out
}

func joined(books []catalog.Book) string {
	return strings.Join(ids(books), ",")
}

var matcher = search.NewMatcher(search.DefaultThreshold)

// --- Example scenario ---

func TestDerive_ExampleMood(t *testing.T) {
	st := filter.Initial().WithMoodToggled("Funny")
	if got := joined(filter.Derive(exampleCatalog(), st, matcher)); got != "A" {
		t.Errorf("moods=[Funny] -> %q, want %q", got, "A")
	}
}

func TestDerive_ExampleUnder100(t *testing.T) {
	st := filter.Initial().WithSort(filter.SortUnder100)
	if got := joined(filter.Derive(exampleCatalog(), st, matcher)); got != "A" {
		t.Errorf("sort=under-100 -> %q, want %q", got, "A")
	}
}

func TestDerive_ExampleMisspelledSearch(t *testing.T) {
	st := filter.Initial().WithSearch("funy")
	got := filter.Derive(exampleCatalog(), st, matcher)
	if !slices.Contains(ids(got), "A") {
		t.Errorf("search=funy -> %v, want it to include A", ids(got))
	}
}

// --- Properties ---

func TestDerive_NoFiltersOnlySorts(t *testing.T) {
	books := builtin(t)
	for _, mode := range filter.Sorts {
		if mode == filter.SortUnder100 {
			continue
		}
		got := filter.Derive(books, filter.Initial().WithSort(mode), matcher)
		if len(got) != len(books) {
			t.Errorf("sort=%s returned %d books, want %d", mode, len(got), len(books))
		}
	}

	got := filter.Derive(books, filter.Initial(), matcher)
	for i := 1; i < len(got); i++ {
		if got[i].CreatedAt.After(got[i-1].CreatedAt) {
			t.Errorf("sort=new out of order at %d: %s after %s", i, got[i].ID, got[i-1].ID)
		}
	}
	if got[0].ID != "mystery-comic" {
		t.Errorf("newest = %q, want %q", got[0].ID, "mystery-comic")
	}
}

func TestDerive_AlphabeticalAndPopularMatch(t *testing.T) {
	books := builtin(t)
	az := filter.Derive(books, filter.Initial().WithSort(filter.SortAZ), matcher)
	pop := filter.Derive(books, filter.Initial().WithSort(filter.SortPopular), matcher)
	if joined(az) != joined(pop) {
		t.Errorf("popular should match a-z:\n a-z: %v\n pop: %v", ids(az), ids(pop))
	}
	if last := az[len(az)-1].Title; last != "Under the Ocean" {
		t.Errorf("last a-z title = %q, want %q", last, "Under the Ocean")
	}
}

func TestDerive_MoodFilterIsExhaustive(t *testing.T) {
	books := builtin(t)
	selections := [][]string{}
	for i, a := range catalog.Moods {
		selections = append(selections, []string{a})
		for _, b := range catalog.Moods[i+1:] {
			selections = append(selections, []string{a, b})
		}
	}

	for _, moods := range selections {
		st := filter.Initial()
		for _, m := range moods {
			st = st.WithMoodToggled(m)
		}
		got := filter.Derive(books, st, matcher)

		inResult := map[string]bool{}
		for _, b := range got {
			inResult[b.ID] = true
			if !slices.ContainsFunc(moods, b.HasTag) {
				t.Errorf("moods=%v: %q has tags %v", moods, b.ID, b.Tags)
			}
		}
		for _, b := range books {
			if slices.ContainsFunc(moods, b.HasTag) && !inResult[b.ID] {
				t.Errorf("moods=%v: %q missing from result", moods, b.ID)
			}
		}
	}
}

func TestDerive_FormatFilter(t *testing.T) {
	books := builtin(t)
	st := filter.Initial().WithFormatToggled(catalog.FormatComic)
	got := filter.Derive(books, st, matcher)
	if len(got) != 3 {
		t.Fatalf("comics = %v, want 3", ids(got))
	}
	for _, b := range got {
		if b.Format != catalog.FormatComic {
			t.Errorf("%q has format %q", b.ID, b.Format)
		}
	}

	st = st.WithFormatToggled(catalog.FormatAudiobook)
	if got := filter.Derive(books, st, matcher); len(got) != 3 {
		t.Errorf("comic|audiobook = %v, want the 3 comics", ids(got))
	}
}

func TestDerive_Under100(t *testing.T) {
	books := append(builtin(t), catalog.Book{ID: "no-pages", Title: "Mystery Length", Format: catalog.FormatAudiobook})
	got := filter.Derive(books, filter.Initial().WithSort(filter.SortUnder100), matcher)
	if len(got) == 0 {
		t.Fatal("under-100 returned nothing")
	}
	for i, b := range got {
		n, ok := b.PageCount()
		if !ok {
			t.Errorf("%q has no page count but was kept", b.ID)
			continue
		}
		if n >= 100 {
			t.Errorf("%q has %d pages", b.ID, n)
		}
		if i > 0 && n < *got[i-1].Pages {
			t.Errorf("not ascending at %d: %d after %d", i, n, *got[i-1].Pages)
		}
	}
	if got[0].ID != "funny-poems" {
		t.Errorf("shortest = %q, want %q", got[0].ID, "funny-poems")
	}
}

func TestDerive_Under100AfterFormatFilter(t *testing.T) {
	st := filter.Initial().
		WithFormatToggled(catalog.FormatComic).
		WithSort(filter.SortUnder100)
	got := filter.Derive(builtin(t), st, matcher)
	if want := "mystery-comic,superhero-comic,comic-heroes"; joined(got) != want {
		t.Errorf("comics under 100 = %q, want %q", joined(got), want)
	}
}

func TestDerive_SearchThenMood(t *testing.T) {
	st := filter.Initial().WithSearch("dragon").WithMoodToggled("Magical")
	got := filter.Derive(builtin(t), st, matcher)
	if len(got) == 0 || !slices.Contains(ids(got), "dragon-friend") {
		t.Errorf("search=dragon moods=[Magical] = %v", ids(got))
	}
	for _, b := range got {
		if !b.HasTag("Magical") {
			t.Errorf("%q lacks Magical", b.ID)
		}
	}
}

func TestDerive_EmptyCatalog(t *testing.T) {
	got := filter.Derive(nil, filter.Initial().WithSearch("x").WithSort(filter.SortAZ), matcher)
	if got == nil || len(got) != 0 {
		t.Errorf("empty catalog -> %v, want empty non-nil slice", got)
	}
}

func TestDerive_UnknownSortKeepsOrder(t *testing.T) {
	books := exampleCatalog()
	st := filter.State{Sort: filter.Sort("loudest")}
	if got := joined(filter.Derive(books, st, matcher)); got != "A,B" {
		t.Errorf("unknown sort = %q, want catalog order", got)
	}
}

func TestDerive_DoesNotMutateInputs(t *testing.T) {
	books := builtin(t)
	before := joined(books)
	st := filter.Initial().WithMoodToggled("Funny").WithSort(filter.SortAZ)
	_ = filter.Derive(books, st, matcher)
	if joined(books) != before {
		t.Error("Derive reordered the catalog")
	}
	if len(st.Moods) != 1 || st.Sort != filter.SortAZ {
		t.Errorf("Derive modified state: %+v", st)
	}
}

// --- State ---

func TestState_TogglesDoNotAlias(t *testing.T) {
	a := filter.Initial().WithMoodToggled("Funny")
	b := a.WithMoodToggled("Thinky")
	c := b.WithMoodToggled("Funny")

	if len(a.Moods) != 1 || len(b.Moods) != 2 {
		t.Errorf("a=%v b=%v", a.Moods, b.Moods)
	}
	if len(c.Moods) != 1 || c.Moods[0] != "Thinky" {
		t.Errorf("c=%v, want [Thinky]", c.Moods)
	}
}

func TestState_IsEmpty(t *testing.T) {
	if !filter.Initial().WithSearch("   ").IsEmpty() {
		t.Error("whitespace search should count as empty")
	}
	if filter.Initial().WithFormatToggled(catalog.FormatBook).IsEmpty() {
		t.Error("format selection should not be empty")
	}
}

func TestParseSort(t *testing.T) {
	if s, err := filter.ParseSort("A-Z"); err != nil || s != filter.SortAZ {
		t.Errorf("ParseSort(A-Z) = %q, %v", s, err)
	}
	if _, err := filter.ParseSort("random"); !errors.Is(err, filter.ErrUnknownSort) {
		t.Errorf("ParseSort(random) err = %v", err)
	}
}
