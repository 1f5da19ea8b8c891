package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/drakos74/free-gesture/internal/math/ml"
	"github.com/drakos74/free-gesture/internal/storage"
	"github.com/rs/zerolog/log"
)

// Path is the directory of the named config files.
var Path = "infra/config"

// Fallback defines what happens when class balancing cannot be applied.
type Fallback string

const (
	// Warn logs a warning and trains on the unbalanced samples.
	Warn Fallback = "warn"
	// Fail aborts the training.
	Fail Fallback = "fail"
)

// Balancing configures the synthetic oversampling of minority classes.
type Balancing struct {
	Enabled    bool     `json:"enabled"`
	Neighbours int      `json:"neighbours"`
	Fallback   Fallback `json:"fallback"`
}

// Config is the configuration of the model lifecycle.
type Config struct {
	// Dir is the root of the file storage
	Dir string `json:"dir"`
	// ModelsDir holds the serialized classifiers, relative to Dir
	ModelsDir string `json:"models_dir"`
	// MetadataDir holds the metadata documents, relative to Dir
	MetadataDir string `json:"metadata_dir"`
	// Seed drives every random choice of the training pipeline
	Seed     int64   `json:"seed"`
	TestSize float64 `json:"test_size"`
	Folds    int     `json:"folds"`
	// MinSamples is the minimum number of samples needed for training
	MinSamples int             `json:"min_samples"`
	Forest     ml.ForestConfig `json:"forest"`
	Balancing  Balancing       `json:"balancing"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Dir:         storage.DefaultDir,
		ModelsDir:   storage.ModelsDir,
		MetadataDir: storage.MetadataDir,
		Seed:        42,
		TestSize:    0.2,
		Folds:       5,
		MinSamples:  10,
		Forest:      ml.DefaultForestConfig(),
		Balancing: Balancing{
			Enabled:    true,
			Neighbours: ml.DefaultNeighbours,
			Fallback:   Warn,
		},
	}
}

// Validate checks the configuration values are usable.
func (c Config) Validate() error {
	if c.TestSize <= 0 || c.TestSize >= 1 {
		return fmt.Errorf("test size must be in (0,1): %v", c.TestSize)
	}
	if c.Folds < 2 {
		return fmt.Errorf("at least 2 folds are needed for cross validation: %d", c.Folds)
	}
	if c.Forest.Trees <= 0 {
		return fmt.Errorf("forest needs at least one tree: %d", c.Forest.Trees)
	}
	switch c.Balancing.Fallback {
	case Warn, Fail:
	default:
		return fmt.Errorf("unknown balancing fallback: '%s'", c.Balancing.Fallback)
	}
	return nil
}

// Load reads the config file at the given path on top of the defaults.
func Load(fileName string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(fileName)
	if err != nil {
		return cfg, fmt.Errorf("could not load config '%s': %w", fileName, err)
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("could not unmarshal config '%s': %w", fileName, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config '%s': %w", fileName, err)
	}

	log.Info().Str("config", fileName).Msg("loaded config")

	return cfg, nil
}

// MustLoad loads the named config file from Path into v.
func MustLoad(key string, v interface{}) []byte {

	b, err := os.ReadFile(fmt.Sprintf("%s/%s.json", Path, key))
	if err != nil {
		panic(fmt.Sprintf("could not load config for %s: %s", key, err.Error()))
	}

	err = json.Unmarshal(b, v)
	if err != nil {
		panic(fmt.Sprintf("could not unmarshal the config for %s: %s", key, err.Error()))
	}

	log.Info().Str("config", key).Msg("loaded config")

	return b

}

// MustLoadProfile loads the named config on top of the defaults.
func MustLoadProfile(key string) Config {
	cfg := Default()
	MustLoad(key, &cfg)
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("invalid config for %s: %s", key, err.Error()))
	}
	return cfg
}
