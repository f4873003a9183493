package utils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/pkg/errors"

	"github.com/sheikhrachel/gol-boards/rules"
)

// Config holds the process-wide configuration. It is loaded once at startup and never mutated afterwards.
type Config struct {
	// Rule thresholds
	SurviveMin     int `json:"survive_min" hcl:"survive_min,optional"`
	SurviveMax     int `json:"survive_max" hcl:"survive_max,optional"`
	ReproduceCount int `json:"reproduce_count" hcl:"reproduce_count,optional"`

	// Input limits, a board of exactly MaxBoardSize rows or columns is accepted
	MaxBoardSize   int `json:"max_board_size" hcl:"max_board_size,optional"`
	MaxGenerations int `json:"max_generations" hcl:"max_generations,optional"`
	MaxIterations  int `json:"max_iterations" hcl:"max_iterations,optional"`
	DisplaySize    int `json:"display_size" hcl:"display_size,optional"`

	// Service
	ListenAddr                string        `json:"listen_addr" hcl:"listen_addr,optional"`
	DatabasePath              string        `json:"database_path" hcl:"database_path,optional"`
	RequestTimeout            time.Duration `json:"request_timeout" hcl:"request_timeout,optional"`
	MaxConcurrentComputations int           `json:"max_concurrent_computations" hcl:"max_concurrent_computations,optional"`
	LogLevel                  string        `json:"log_level" hcl:"log_level,optional"`
	LogFormat                 string        `json:"log_format" hcl:"log_format,optional"`

	// Terminal play mode
	Width              int           `json:"width" hcl:"width,optional"`
	Height             int           `json:"height" hcl:"height,optional"`
	FrameRate          time.Duration `json:"frame_rate" hcl:"frame_rate,optional"`
	RandomDensity      float64       `json:"random_density" hcl:"random_density,optional"`
	MaxPlayGenerations int           `json:"max_play_generations" hcl:"max_play_generations,optional"`
	Seed               int64         `json:"seed" hcl:"seed,optional"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		SurviveMin:                rules.DefaultSurviveMin,
		SurviveMax:                rules.DefaultSurviveMax,
		ReproduceCount:            rules.DefaultReproduceCount,
		MaxBoardSize:              1000,
		MaxGenerations:            1000,
		MaxIterations:             1000,
		DisplaySize:               50,
		ListenAddr:                ":8080",
		RequestTimeout:            30 * time.Second,
		MaxConcurrentComputations: runtime.NumCPU(),
		LogLevel:                  "info",
		LogFormat:                 "json",
		Width:                     60,
		Height:                    30,
		FrameRate:                 150 * time.Millisecond,
		RandomDensity:             0.15,
		MaxPlayGenerations:        1000,
		Seed:                      1,
	}
}

// LoadConfig loads configuration from a JSON or HCL file on top of the defaults
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".hcl":
		if err := hclsimple.DecodeFile(filename, nil, &config); err != nil {
			return config, errors.Wrapf(err, "[LoadConfig] failed to decode hcl file: %+v", filename)
		}
	default:
		data, err := os.ReadFile(filename)
		if err != nil {
			return config, errors.Wrapf(err, "[LoadConfig] failed to read file: %+v", filename)
		}

		if err = json.Unmarshal(data, &config); err != nil {
			return config, errors.Wrapf(err, "[LoadConfig] failed to unmarshal data from file: %+v", filename)
		}
	}

	return config, config.Validate()
}

// Validate rejects limits and thresholds the service cannot run with
func (c Config) Validate() error {
	if c.SurviveMin < 0 || c.SurviveMax > 8 || c.SurviveMin > c.SurviveMax {
		return errors.Errorf("[Validate] invalid survival range [%d, %d]", c.SurviveMin, c.SurviveMax)
	}
	if c.ReproduceCount < 0 || c.ReproduceCount > 8 {
		return errors.Errorf("[Validate] invalid reproduce count %d", c.ReproduceCount)
	}
	if c.MaxBoardSize <= 0 || c.MaxGenerations <= 0 || c.MaxIterations <= 0 {
		return errors.New("[Validate] board size, generation and iteration limits must be positive")
	}
	if c.MaxConcurrentComputations <= 0 {
		return errors.Errorf("[Validate] max_concurrent_computations must be positive, got %d", c.MaxConcurrentComputations)
	}
	return nil
}

// Rules returns the engine thresholds held by the configuration
func (c Config) Rules() rules.Rules {
	return rules.Rules{
		SurviveMin:     c.SurviveMin,
		SurviveMax:     c.SurviveMax,
		ReproduceCount: c.ReproduceCount,
	}
}
