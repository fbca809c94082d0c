package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blackwell-systems/readshelf/internal/catalog"
	"github.com/blackwell-systems/readshelf/internal/config"
	"github.com/blackwell-systems/readshelf/internal/filter"
	"github.com/blackwell-systems/readshelf/internal/shelf"
)

// testConfig writes a config using the directory backend under a temp dir,
// so state survives between command runs like it does for a real user.
func testConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	c := &config.Config{
		Storage: config.StorageConfig{Backend: "dir", Path: filepath.Join(dir, "data")},
		Search:  config.SearchConfig{Threshold: 0.4},
		Log:     config.LogConfig{Level: "error", Format: "console"},
	}
	path := filepath.Join(dir, "config.yml")
	if err := config.Save(c, path); err != nil {
		t.Fatalf("saving config: %v", err)
	}
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config=" + cfgPath, "--no-color", "--no-interactive"}, args...))
	err := root.Execute()
	teardown()
	return out.String(), err
}

func mustRun(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	out, err := run(t, cfgPath, args...)
	if err != nil {
		t.Fatalf("readshelf %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func currentShelf(t *testing.T, cfgPath string) shelf.Shelf {
	t.Helper()
	var s shelf.Shelf
	if err := json.Unmarshal([]byte(mustRun(t, cfgPath, "shelf", "--json")), &s); err != nil {
		t.Fatalf("decoding shelf: %v", err)
	}
	return s
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestShelfCommandsPersist(t *testing.T) {
	cfgPath := testConfig(t)

	mustRun(t, cfgPath, "login", "Alex", "--class", "3B")
	mustRun(t, cfgPath, "fav", "add", "dragon-friend")
	mustRun(t, cfgPath, "reading", "add", "bfg-roald-dahl")
	mustRun(t, cfgPath, "reading", "add", "joke-book")

	s := currentShelf(t, cfgPath)
	if len(s.Favourites) != 1 || s.Favourites[0].BookID != "dragon-friend" {
		t.Errorf("favourites = %+v", s.Favourites)
	}
	if len(s.Reading) != 2 || s.Reading[0].BookID != "bfg-roald-dahl" {
		t.Errorf("reading = %+v", s.Reading)
	}

	mustRun(t, cfgPath, "reading", "rm", "bfg-roald-dahl")
	mustRun(t, cfgPath, "fav", "rm", "dragon-friend")
	s = currentShelf(t, cfgPath)
	if len(s.Favourites) != 0 || len(s.Reading) != 1 {
		t.Errorf("after removal = %+v", s)
	}
}

func TestShelfCommandsRequireLogin(t *testing.T) {
	cfgPath := testConfig(t)

	for _, args := range [][]string{
		{"fav", "add", "joke-book"},
		{"reading", "add", "joke-book"},
		{"shelf"},
		{"whoami"},
		{"finish", "joke-book"},
	} {
		_, err := run(t, cfgPath, args...)
		if !errors.Is(err, errNotSignedIn) {
			t.Errorf("readshelf %s: err = %v, want errNotSignedIn", strings.Join(args, " "), err)
		}
	}
}

func TestFavUnknownBook(t *testing.T) {
	cfgPath := testConfig(t)
	mustRun(t, cfgPath, "login", "Sam")

	if _, err := run(t, cfgPath, "fav", "add", "no-such-book"); err == nil {
		t.Error("expected error for unknown book")
	}
}

func TestLogoutKeepsShelf(t *testing.T) {
	cfgPath := testConfig(t)

	mustRun(t, cfgPath, "login", "Alex", "--class", "3B")
	mustRun(t, cfgPath, "fav", "add", "joke-book")
	mustRun(t, cfgPath, "logout")

	if _, err := run(t, cfgPath, "shelf"); !errors.Is(err, errNotSignedIn) {
		t.Fatalf("shelf after logout: err = %v", err)
	}

	// Same name and class is a different reader with an empty shelf.
	mustRun(t, cfgPath, "login", "Alex", "--class", "3B")
	if s := currentShelf(t, cfgPath); len(s.Favourites) != 0 {
		t.Errorf("second Alex sees %+v", s.Favourites)
	}
}

func TestProfileUpdatesClass(t *testing.T) {
	cfgPath := testConfig(t)
	mustRun(t, cfgPath, "login", "Alex")

	if _, err := run(t, cfgPath, "profile"); err == nil {
		t.Error("profile without flags should fail")
	}
	mustRun(t, cfgPath, "profile", "--class", "4C")

	if _, err := run(t, cfgPath, "profile", "--name", ""); err == nil {
		t.Error("empty name should be rejected")
	}
}

func TestLoginRejectsEmptyName(t *testing.T) {
	cfgPath := testConfig(t)
	if _, err := run(t, cfgPath, "login", "   "); err == nil {
		t.Error("expected validation error")
	}
}

func TestFinishRecordsCompletion(t *testing.T) {
	cfgPath := testConfig(t)
	mustRun(t, cfgPath, "login", "Robin")
	mustRun(t, cfgPath, "reading", "add", "joke-book")

	mustRun(t, cfgPath, "finish", "joke-book", "--answer", "loved-line="+words(25))

	s := currentShelf(t, cfgPath)
	if len(s.Finished) != 1 {
		t.Fatalf("finished = %+v", s.Finished)
	}
	c := s.Finished[0]
	if c.BookID != "joke-book" || c.Seen || c.Responses[0].WordCount != 25 {
		t.Errorf("completion = %+v", c)
	}
	if shelf.IsReading("joke-book", s) {
		t.Error("finished book should leave the reading list")
	}
	if got := len(shelf.Unseen(s)); got != 1 {
		t.Errorf("unseen = %d, want 1", got)
	}

	mustRun(t, cfgPath, "shelf", "seen")
	if got := len(shelf.Unseen(currentShelf(t, cfgPath))); got != 0 {
		t.Errorf("unseen after seen = %d, want 0", got)
	}
}

func TestFinishRejectsBadReflections(t *testing.T) {
	cfgPath := testConfig(t)
	mustRun(t, cfgPath, "login", "Robin")

	cases := map[string][]string{
		"too short":      {"--answer", "loved-line=" + words(5)},
		"too long":       {"--answer", "loved-line=" + words(41)},
		"missing prompt": {},
		"unknown prompt": {"--answer", "loved-line=" + words(25), "--answer", "feelings=" + words(50)},
	}
	for name, flags := range cases {
		args := append([]string{"finish", "joke-book"}, flags...)
		if _, err := run(t, cfgPath, args...); !errors.Is(err, shelf.ErrReflection) {
			t.Errorf("%s: err = %v, want ErrReflection", name, err)
		}
	}

	if _, err := run(t, cfgPath, "finish", "joke-book", "--answer", "no-equals-sign"); err == nil {
		t.Error("malformed --answer should fail")
	}
	if s := currentShelf(t, cfgPath); len(s.Finished) != 0 {
		t.Errorf("rejected reflections were recorded: %+v", s.Finished)
	}
}

func TestBrowseJSON(t *testing.T) {
	cfgPath := testConfig(t)

	var all []catalog.Book
	if err := json.Unmarshal([]byte(mustRun(t, cfgPath, "browse", "--json")), &all); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(all) != 20 {
		t.Fatalf("browse returned %d books, want 20", len(all))
	}

	var comics []catalog.Book
	out := mustRun(t, cfgPath, "browse", "--json", "--format", "comic", "--sort", "under-100")
	if err := json.Unmarshal([]byte(out), &comics); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	var ids []string
	for _, b := range comics {
		ids = append(ids, b.ID)
	}
	if got := strings.Join(ids, ","); got != "mystery-comic,superhero-comic,comic-heroes" {
		t.Errorf("comics under 100 = %s", got)
	}

	var funny []catalog.Book
	if err := json.Unmarshal([]byte(mustRun(t, cfgPath, "browse", "--json", "--mood", "funny")), &funny); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	for _, b := range funny {
		if !b.HasTag(catalog.MoodFunny) {
			t.Errorf("%s is not Funny", b.ID)
		}
	}
}

func TestBrowseRejectsUnknownSelections(t *testing.T) {
	cfgPath := testConfig(t)

	if _, err := run(t, cfgPath, "browse", "--sort", "longest"); !errors.Is(err, filter.ErrUnknownSort) {
		t.Errorf("unknown sort: err = %v", err)
	}
	if _, err := run(t, cfgPath, "browse", "--mood", "spooky"); !errors.Is(err, filter.ErrUnknownMood) {
		t.Errorf("unknown mood: err = %v", err)
	}
	if _, err := run(t, cfgPath, "browse", "--format", "scroll"); !errors.Is(err, catalog.ErrUnknownFormat) {
		t.Errorf("unknown format: err = %v", err)
	}
}

func TestBrowseTextOutput(t *testing.T) {
	cfgPath := testConfig(t)
	out := mustRun(t, cfgPath, "browse", "--search", "zzzzqqqq")
	if !strings.Contains(out, "No books found.") {
		t.Errorf("output = %q", out)
	}

	out = mustRun(t, cfgPath, "browse", "--mood", "magical")
	if !strings.Contains(out, "dragon-friend") {
		t.Errorf("magical list missing dragon-friend:\n%s", out)
	}
}

func TestMoodsCounts(t *testing.T) {
	cfgPath := testConfig(t)
	out := mustRun(t, cfgPath, "moods")
	for _, m := range catalog.Moods {
		if !strings.Contains(out, m) {
			t.Errorf("moods output missing %q", m)
		}
	}
}

func TestReadingOpen(t *testing.T) {
	var opened []string
	launch = func(path, app string) error {
		opened = append(opened, path)
		return nil
	}
	t.Cleanup(func() { launch = openFile })

	cfgPath := testConfig(t)
	mustRun(t, cfgPath, "login", "Kim")
	mustRun(t, cfgPath, "reading", "open", "joke-book")

	if len(opened) != 1 || !strings.Contains(opened[0], "example-jokes") {
		t.Fatalf("opened = %v", opened)
	}
	s := currentShelf(t, cfgPath)
	if !shelf.IsReading("joke-book", s) || s.Reading[0].LastOpened == nil {
		t.Errorf("reading = %+v", s.Reading)
	}
}

func TestCatalogExport(t *testing.T) {
	cfgPath := testConfig(t)
	path := filepath.Join(t.TempDir(), "catalog.yml")

	mustRun(t, cfgPath, "catalog", "export", path)
	list, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("reloading export: %v", err)
	}
	if len(list) != 20 {
		t.Errorf("exported %d books, want 20", len(list))
	}

	mustRun(t, cfgPath, "catalog", "export", path)
	if _, err := os.Stat(path + ".bak"); err != nil {
		t.Errorf("expected backup: %v", err)
	}

	out := mustRun(t, cfgPath, "catalog", "export")
	if !strings.Contains(out, "id: joke-book") {
		t.Error("stdout export missing joke-book")
	}
}

func TestCustomCatalog(t *testing.T) {
	dir := t.TempDir()
	catPath := filepath.Join(dir, "books.yml")
	data := []byte(`- id: only-one
  title: Only One
  author: Someone
  summary: The single book.
  tags: [Funny]
  format: book
  pages: 10
  created_at: 2024-01-01T00:00:00Z
`)
	if err := os.WriteFile(catPath, data, 0600); err != nil {
		t.Fatal(err)
	}

	c := &config.Config{
		Storage: config.StorageConfig{Backend: "memory"},
		Catalog: config.CatalogConfig{Path: catPath},
		Search:  config.SearchConfig{Threshold: 0.4},
		Log:     config.LogConfig{Level: "error", Format: "json"},
	}
	cfgPath := filepath.Join(dir, "config.yml")
	if err := config.Save(c, cfgPath); err != nil {
		t.Fatal(err)
	}

	var list []catalog.Book
	if err := json.Unmarshal([]byte(mustRun(t, cfgPath, "browse", "--json")), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != "only-one" {
		t.Errorf("browse = %+v", list)
	}
}

func TestVersion(t *testing.T) {
	SetVersion("v1.2.3")
	t.Cleanup(func() { appVersion = "dev" })

	out := mustRun(t, "/nonexistent/config.yml", "version")
	if strings.TrimSpace(out) != "readshelf v1.2.3" {
		t.Errorf("version output = %q", out)
	}
}

func TestParseAnswers(t *testing.T) {
	got, err := parseAnswers([]string{"loved-line= a b = c ", "feelings=x"})
	if err != nil {
		t.Fatal(err)
	}
	if got[0].PromptID != "loved-line" || got[0].Text != "a b = c" {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].PromptID != "feelings" || got[1].Text != "x" {
		t.Errorf("second = %+v", got[1])
	}

	if _, err := parseAnswers([]string{"nope"}); err == nil {
		t.Error("expected error")
	}
}
