package config

import "github.com/blackwell-systems/readshelf/internal/validation"

// Config is the top-level readshelf configuration.
type Config struct {
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Catalog CatalogConfig `mapstructure:"catalog" yaml:"catalog"`
	Search  SearchConfig  `mapstructure:"search" yaml:"search"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// StorageConfig selects where identities and shelves are kept.
type StorageConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend" validate:"oneof=badger dir memory none"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// CatalogConfig points at an optional YAML catalog replacing the built-in one.
type CatalogConfig struct {
	Path string `mapstructure:"path" yaml:"path,omitempty"`
}

// SearchConfig tunes the fuzzy matcher.
type SearchConfig struct {
	Threshold float64 `mapstructure:"threshold" yaml:"threshold" validate:"gt=0,lte=1"`
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=console json"`
}

// Validate checks every field against its allowed values.
func (c *Config) Validate() error {
	return validation.New().Validate(c)
}

// UsesStorage reports whether identities and shelves outlive the process.
func (c *Config) UsesStorage() bool {
	return c.Storage.Backend == "badger" || c.Storage.Backend == "dir"
}
