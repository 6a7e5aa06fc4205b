// Package config loads the grounder configuration file.
//
// Configuration lives in a TOML file, by default ~/.grounder/config.toml.
// Every field has a working default so a missing file is not an error;
// secrets can come from the environment instead of the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full application configuration.
type Config struct {
	// DefaultOwner is the owner namespace used when the CLI is not
	// given one explicitly.
	DefaultOwner string `toml:"default_owner"`

	// DataDir holds local state (the shadow database).
	// Empty means ~/.grounder/data.
	DataDir string `toml:"data_dir"`

	Store     StoreConfig     `toml:"store"`
	Chunking  ChunkingConfig  `toml:"chunking"`
	Retrieval RetrievalConfig `toml:"retrieval"`
}

// StoreConfig holds vector store connection settings.
type StoreConfig struct {
	Host   string `toml:"host"`
	Scheme string `toml:"scheme"`
	APIKey string `toml:"api_key"`

	// OpenAIKey is forwarded for server-side vectorisation.
	OpenAIKey string `toml:"openai_api_key"`
}

// ChunkingConfig tunes the chunker.
type ChunkingConfig struct {
	ChunkSize int `toml:"chunk_size"`
	Overlap   int `toml:"overlap"`
}

// RetrievalConfig tunes context assembly.
type RetrievalConfig struct {
	// Budget is the default context budget in characters.
	Budget int `toml:"budget"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DefaultOwner: "default",
		Store: StoreConfig{
			Host:   "localhost:8080",
			Scheme: "http",
		},
		Chunking: ChunkingConfig{
			ChunkSize: 3000,
			Overlap:   300,
		},
		Retrieval: RetrievalConfig{
			Budget: 8000,
		},
	}
}

// DefaultPath returns the standard config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".grounder", "config.toml"), nil
}

// Load reads the config file at path, layering it over the defaults.
// A missing file yields the defaults. Secrets fall back to the
// WEAVIATE_API_KEY and OPENAI_API_KEY environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if cfg.Store.APIKey == "" {
		cfg.Store.APIKey = os.Getenv("WEAVIATE_API_KEY")
	}
	if cfg.Store.OpenAIKey == "" {
		cfg.Store.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	}

	return cfg, nil
}

// Save writes the configuration to path, creating the directory when
// needed.
func Save(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}
