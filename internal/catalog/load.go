package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed books.yml
var builtinYAML []byte

// Builtin returns the catalog shipped with the binary.
func Builtin() ([]Book, error) {
	return Parse(builtinYAML)
}

// Load reads a catalog YAML file from disk. A missing file yields an empty
// catalog.
func Load(path string) ([]Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Book{}, nil
		}
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes into a book list and checks that every entry has
// a unique ID and a known format.
func Parse(data []byte) ([]Book, error) {
	if len(data) == 0 {
		return []Book{}, nil
	}
	var books []Book
	if err := yaml.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("parsing catalog YAML: %w", err)
	}
	if books == nil {
		return []Book{}, nil
	}
	if err := validate(books); err != nil {
		return nil, err
	}
	return books, nil
}

func validate(books []Book) error {
	seen := make(map[string]bool, len(books))
	for i, b := range books {
		if b.ID == "" {
			return fmt.Errorf("catalog entry %d: missing id", i)
		}
		if seen[b.ID] {
			return fmt.Errorf("catalog entry %q: duplicate id", b.ID)
		}
		seen[b.ID] = true
		if !b.Format.Valid() {
			return fmt.Errorf("catalog entry %q: %w: %q", b.ID, ErrUnknownFormat, b.Format)
		}
	}
	return nil
}
