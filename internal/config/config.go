// Package config loads and validates the YAML configuration file.
package config

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when the CLI is invoked without a config argument.
const DefaultPath = "./config.yaml"

const (
	defaultATRThreshold         = 0.35
	defaultATRMinCandlesPercent = 0.8
	defaultMovingAverageType    = "EMA"
)

// Error reports a fatal configuration problem.
type Error struct {
	Reason string
}

func (e *Error) Error() string { return "config: " + e.Reason }

// Config is the parsed, validated configuration.
type Config struct {
	Symbols              []string `yaml:"symbols"`
	MinVolUSDT           float64  `yaml:"min_vol_usdt"`
	ATRThreshold         float64  `yaml:"atr_threshold"`
	ATRMinCandlesPercent float64  `yaml:"atr_min_candles_percent"`
	ATRMovingAverageType string   `yaml:"atr_moving_average_type"`
}

// Load reads and validates the config file at path, coercing
// out-of-range values to defaults and logging a warning for each one.
func Load(path string, log zerolog.Logger) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Reason: fmt.Sprintf("reading %s: %v", path, err)}
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, &Error{Reason: fmt.Sprintf("parsing %s: %v", path, err)}
	}

	if len(cfg.Symbols) == 0 {
		return nil, &Error{Reason: "symbols must be a non-empty list"}
	}
	if cfg.MinVolUSDT <= 0 {
		return nil, &Error{Reason: "min_vol_usdt must be positive"}
	}

	if cfg.ATRThreshold <= 0 {
		log.Warn().Float64("given", cfg.ATRThreshold).Float64("default", defaultATRThreshold).
			Msg("atr_threshold non-positive, coercing to default")
		cfg.ATRThreshold = defaultATRThreshold
	}
	if cfg.ATRMinCandlesPercent <= 0 || cfg.ATRMinCandlesPercent > 1 {
		log.Warn().Float64("given", cfg.ATRMinCandlesPercent).Float64("default", defaultATRMinCandlesPercent).
			Msg("atr_min_candles_percent out of (0,1], coercing to default")
		cfg.ATRMinCandlesPercent = defaultATRMinCandlesPercent
	}
	if cfg.ATRMovingAverageType != defaultMovingAverageType {
		log.Warn().Str("given", cfg.ATRMovingAverageType).Str("default", defaultMovingAverageType).
			Msg("unsupported atr_moving_average_type, falling back to EMA")
		cfg.ATRMovingAverageType = defaultMovingAverageType
	}

	return &cfg, nil
}
