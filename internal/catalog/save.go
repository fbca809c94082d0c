package catalog

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Marshal encodes a book list to YAML bytes.
func Marshal(books []Book) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(books); err != nil {
		return nil, fmt.Errorf("encoding catalog: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the book list to a file on disk. Used by `readshelf catalog
// export` to seed a custom catalog from the built-in one.
func Save(path string, books []Book) error {
	data, err := Marshal(books)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
