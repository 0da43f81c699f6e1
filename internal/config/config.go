// Package config loads the optional reel.yaml configuration file.
// Every field has a working default; a missing file is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/reelrec/reel/internal/engine"
	"github.com/reelrec/reel/internal/vocab"
)

// FileName is the config file looked up inside the data directory.
const FileName = "reel.yaml"

// Config holds all tunables for building and serving recommendations.
type Config struct {
	// VocabularySize caps the number of distinct tokens kept when
	// building the vocabulary.
	VocabularySize int `yaml:"vocabulary_size"`

	// MetadataFields lists the movie fields combined into the tag
	// sequence, in order.
	MetadataFields []string `yaml:"metadata_fields"`

	// TopKDefault is the recommendation count when the caller does not
	// ask for a specific K.
	TopKDefault int `yaml:"top_k_default"`

	// CastLimit truncates each movie's cast list at load time.
	// Zero keeps the full list.
	CastLimit int `yaml:"cast_limit"`

	// MaxNeighbors is how many neighbors per movie are persisted after
	// a build.
	MaxNeighbors int `yaml:"max_neighbors"`

	Server  ServerConfig  `yaml:"server"`
	Posters PostersConfig `yaml:"posters"`
}

// ServerConfig holds HTTP serving settings.
type ServerConfig struct {
	// Addr is the listen address, host:port.
	Addr string `yaml:"addr"`
}

// PostersConfig holds TMDB poster lookup settings.
type PostersConfig struct {
	// APIKey enables poster lookups. Empty disables them.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the TMDB API endpoint. Empty uses the default.
	BaseURL string `yaml:"base_url"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		VocabularySize: vocab.DefaultMaxSize,
		MetadataFields: engine.DefaultMetadataFields,
		TopKDefault:    engine.DefaultTopK,
		CastLimit:      3,
		MaxNeighbors:   50,
		Server:         ServerConfig{Addr: ":8080"},
	}
}

// Load reads the config file from dir. A missing file yields Default().
// Fields absent from the file keep their default values.
func Load(dir string) (Config, error) {
	cfg := Default()

	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	// Re-apply defaults for fields explicitly set to zero values.
	if cfg.VocabularySize <= 0 {
		cfg.VocabularySize = vocab.DefaultMaxSize
	}
	if len(cfg.MetadataFields) == 0 {
		cfg.MetadataFields = engine.DefaultMetadataFields
	}
	if cfg.TopKDefault <= 0 {
		cfg.TopKDefault = engine.DefaultTopK
	}
	if cfg.MaxNeighbors <= 0 {
		cfg.MaxNeighbors = 50
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}

	return cfg, nil
}

// Engine converts the config into engine build settings.
func (c Config) Engine() engine.Config {
	return engine.Config{
		VocabularySize: c.VocabularySize,
		MetadataFields: c.MetadataFields,
		TopKDefault:    c.TopKDefault,
	}
}
