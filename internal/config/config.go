package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/blackwell-systems/readshelf/internal/util"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultPath returns the default config file path.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "readshelf", "config.yml")
}

// Load reads the config from path, or from READSHELF_CONFIG / DefaultPath
// when path is empty. A missing file yields the defaults; READSHELF_*
// environment variables override both.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("storage.backend", "badger")
	v.SetDefault("storage.path", defaultDataDir())
	v.SetDefault("catalog.path", "")
	v.SetDefault("search.threshold", 0.4)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")

	v.SetEnvPrefix("READSHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = os.Getenv("READSHELF_CONFIG")
	}
	if path == "" {
		path = DefaultPath()
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		// Running without a config file is the normal case.
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Storage.Path = ExpandHome(cfg.Storage.Path)
	cfg.Catalog.Path = ExpandHome(cfg.Catalog.Path)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes the config to path.
func Save(cfg *Config, path string) error {
	if err := util.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	return enc.Encode(cfg)
}

// ExpandHome expands a leading ~/ in a path.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

func defaultDataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "readshelf", "db")
}
