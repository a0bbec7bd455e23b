package autorig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultArmatureName = "Armature"
	DefaultCastLength   = 0.01
	DefaultMaxDepth     = 256
	DefaultLogPrefix    = "autorig"
)

// Config controls a rig run. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	// ArmatureName names the created armature and is always excluded from
	// contact tests.
	ArmatureName string `yaml:"armature_name"`
	// CastLength is the contact ray length in world units. Tune to mesh scale.
	CastLength float32 `yaml:"cast_length"`

	// RevisitParts disables the visited set, so a part reachable along
	// several paths is rigged once per path. Cycles longer than two parts
	// then only stop at MaxDepth.
	RevisitParts bool `yaml:"revisit_parts"`
	// MaxDepth bounds the traversal when RevisitParts is set.
	MaxDepth int `yaml:"max_depth"`

	// CacheIndexes reuses a part's spatial index within one run while its
	// world matrix is unchanged.
	CacheIndexes bool `yaml:"cache_indexes"`
	// BroadPhase skips parts whose bounds cannot be within CastLength.
	BroadPhase bool `yaml:"broad_phase"`
	// GridCellSize of the broad-phase grid; 0 picks one from the part sizes.
	GridCellSize float32 `yaml:"grid_cell_size"`

	Debug     bool   `yaml:"debug"`
	LogPrefix string `yaml:"log_prefix"`
}

func DefaultConfig() Config {
	return Config{
		ArmatureName: DefaultArmatureName,
		CastLength:   DefaultCastLength,
		MaxDepth:     DefaultMaxDepth,
		CacheIndexes: true,
		BroadPhase:   true,
		LogPrefix:    DefaultLogPrefix,
	}
}

// LoadConfig reads a YAML config file. Keys missing from the file keep their
// DefaultConfig values; unknown keys are an error.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.ArmatureName == "" {
		return fmt.Errorf("armature_name must not be empty")
	}
	if !(c.CastLength > 0) {
		return fmt.Errorf("cast_length must be positive, got %v", c.CastLength)
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth)
	}
	if c.GridCellSize < 0 {
		return fmt.Errorf("grid_cell_size must not be negative, got %v", c.GridCellSize)
	}
	return nil
}
