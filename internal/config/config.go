// =============================================================================
// Customs to DCE Converter - Configuration Module
// =============================================================================
//
// This module loads the optional YAML configuration file. Every setting has
// a default, so the converter runs without any configuration file at all;
// command line flags override whatever is loaded here.
//
// CONFIGURATION FILE (config.yaml):
//   source_encoding: UTF-8
//   output:
//     format: csv
//     file_stem: TH-Tariff-HScode
//   split:
//     enabled: false
//     chunk_size: 100000
//     rounding: half-up
//   write_summary: false
//   logging:
//     level: info
//     format: console
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	// DefaultChunkSize is the row bound for each part file.
	DefaultChunkSize = 100000

	// DefaultFileStem is the fixed part of every output file name.
	DefaultFileStem = "TH-Tariff-HScode"

	// DefaultEncoding is the assumed character encoding of the source file.
	DefaultEncoding = "UTF-8"

	// DefaultSheetName is the worksheet name for xlsx output.
	DefaultSheetName = "DCE"
)

// Output formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Split-count rounding modes.
const (
	RoundingHalfUp   = "half-up"
	RoundingHalfEven = "half-even"
	RoundingCeil     = "ceil"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// SourceEncoding is the character encoding of the customs export.
	// Any WHATWG label is accepted, e.g. "UTF-8", "windows-874", "tis-620".
	SourceEncoding string `yaml:"source_encoding"`

	// Output controls the written files.
	Output OutputConfig `yaml:"output"`

	// Split controls chunked output.
	Split SplitConfig `yaml:"split"`

	// WriteSummary writes a processing summary next to the output files.
	WriteSummary bool `yaml:"write_summary"`

	// Logging controls the zap logger.
	Logging LoggingConfig `yaml:"logging"`
}

// OutputConfig holds output file settings.
type OutputConfig struct {
	// Format is "csv" or "xlsx".
	Format string `yaml:"format"`

	// FileStem is placed after the date in every file name:
	// {YYYY-MM-DD}_{FileStem}.csv or {YYYY-MM-DD}_{FileStem}_Part_{i}.csv
	FileStem string `yaml:"file_stem"`

	// SheetName is the worksheet name used for xlsx output.
	SheetName string `yaml:"xlsx_sheet"`
}

// SplitConfig holds chunking settings.
type SplitConfig struct {
	// Enabled turns on splitting.
	Enabled bool `yaml:"enabled"`

	// ChunkSize is the maximum number of data rows per part file.
	ChunkSize int `yaml:"chunk_size"`

	// Rounding selects how the number of parts is derived from
	// total/chunk_size. See chunkwriter.RoundingMode.
	Rounding string `yaml:"rounding"`
}

// LoggingConfig holds logging configuration options.
type LoggingConfig struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	Format     string `yaml:"format"`      // console, json
	OutputFile string `yaml:"output_file"` // optional file output
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the configuration from a YAML file.
//
// An empty path or a missing file yields the defaults without error, so the
// converter works out of the box.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Save writes the configuration as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// applyDefaults sets default values for any unset option.
func applyDefaults(cfg *Config) {
	if cfg.SourceEncoding == "" {
		cfg.SourceEncoding = DefaultEncoding
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = FormatCSV
	}
	cfg.Output.Format = strings.ToLower(cfg.Output.Format)
	if cfg.Output.FileStem == "" {
		cfg.Output.FileStem = DefaultFileStem
	}
	if cfg.Output.SheetName == "" {
		cfg.Output.SheetName = DefaultSheetName
	}
	if cfg.Split.ChunkSize == 0 {
		cfg.Split.ChunkSize = DefaultChunkSize
	}
	if cfg.Split.Rounding == "" {
		cfg.Split.Rounding = RoundingHalfUp
	}
	cfg.Split.Rounding = strings.ToLower(cfg.Split.Rounding)
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

// Validate checks the values that defaults cannot fix.
func (c *Config) Validate() error {
	if c.Split.ChunkSize < 1 {
		return fmt.Errorf("split.chunk_size must be a positive integer, got %d", c.Split.ChunkSize)
	}

	switch c.Split.Rounding {
	case RoundingHalfUp, RoundingHalfEven, RoundingCeil:
	default:
		return fmt.Errorf("unknown split.rounding %q (want %s, %s or %s)",
			c.Split.Rounding, RoundingHalfUp, RoundingHalfEven, RoundingCeil)
	}

	switch c.Output.Format {
	case FormatCSV, FormatXLSX:
	default:
		return fmt.Errorf("unknown output.format %q (want %s or %s)", c.Output.Format, FormatCSV, FormatXLSX)
	}

	if strings.ContainsAny(c.Output.FileStem, `/\`) {
		return fmt.Errorf("output.file_stem must not contain path separators: %q", c.Output.FileStem)
	}

	return nil
}
