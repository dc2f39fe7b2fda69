package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for strata.
type Config struct {
	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis"`

	// Thresholds used by analyzers
	Thresholds ThresholdConfig `koanf:"thresholds" toml:"thresholds"`

	// Language adapter settings
	Adapters AdapterConfig `koanf:"adapters" toml:"adapters"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`
}

// AnalysisConfig controls which analyzers run.
type AnalysisConfig struct {
	Complexity   bool `koanf:"complexity" toml:"complexity"`
	Architecture bool `koanf:"architecture" toml:"architecture"`
	Workers      int  `koanf:"workers" toml:"workers"` // 0 = 2x NumCPU
}

// ThresholdConfig defines metric thresholds.
type ThresholdConfig struct {
	Complexity         int     `koanf:"complexity" toml:"complexity"`
	ArchitectureReview float64 `koanf:"architecture_review" toml:"architecture_review"`
}

// AdapterConfig configures language adapters.
type AdapterConfig struct {
	// Languages restricts parsing to the named languages. Empty means all.
	Languages []string `koanf:"languages" toml:"languages"`
	// RustParser is the path or name of an external rust-parser binary.
	// When set, Rust files are parsed by that tool instead of tree-sitter.
	RustParser  string `koanf:"rust_parser" toml:"rust_parser"`
	Timeout     int    `koanf:"timeout" toml:"timeout"` // seconds
	MaxFileSize int64  `koanf:"max_file_size" toml:"max_file_size"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns   []string `koanf:"patterns" toml:"patterns"`
	Extensions []string `koanf:"extensions" toml:"extensions"`
	Dirs       []string `koanf:"dirs" toml:"dirs"`
	Gitignore  bool     `koanf:"gitignore" toml:"gitignore"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format" toml:"format"` // text, json, markdown, toon, yaml
	Color   bool   `koanf:"color" toml:"color"`
	Verbose bool   `koanf:"verbose" toml:"verbose"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Complexity:   true,
			Architecture: true,
		},
		Thresholds: ThresholdConfig{
			Complexity:         15,
			ArchitectureReview: 0.5,
		},
		Adapters: AdapterConfig{
			Timeout:     30,
			MaxFileSize: 1 << 20,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
				"*.d.ts",
			},
			Extensions: []string{
				".lock",
				".sum",
			},
			Dirs: []string{
				"vendor",
				"node_modules",
				".git",
				".strata",
				"dist",
				"build",
				"target",
				"__pycache__",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".strata/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Load loads configuration from a file, layered over the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// configNames are the file names searched by Find, in priority order.
var configNames = []string{
	"strata.toml",
	"strata.yaml",
	"strata.yml",
	"strata.json",
	".strata.toml",
	".strata.yaml",
	".strata.yml",
	".strata.json",
}

// Find returns the first config file found under dir or dir/.strata, or "".
func Find(dir string) string {
	for _, sub := range []string{".", ".strata"} {
		for _, name := range configNames {
			path := filepath.Join(dir, sub, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// LoadOrDefault loads the config from path, or from the standard locations
// when path is empty. It returns the defaults when no file is found. The
// returned source is the file that was loaded, or "".
func LoadOrDefault(path string) (cfg *Config, source string, err error) {
	if path == "" {
		path = Find(".")
	}
	if path == "" {
		return DefaultConfig(), "", nil
	}
	cfg, err = Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// Validate checks that values are within their allowed ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Thresholds.Complexity < 1 {
		errs = append(errs, fmt.Errorf("thresholds.complexity must be >= 1, got %d", c.Thresholds.Complexity))
	}
	if c.Thresholds.ArchitectureReview < 0 || c.Thresholds.ArchitectureReview > 1 {
		errs = append(errs, fmt.Errorf("thresholds.architecture_review must be in [0,1], got %g", c.Thresholds.ArchitectureReview))
	}
	if c.Adapters.Timeout < 1 {
		errs = append(errs, fmt.Errorf("adapters.timeout must be >= 1, got %d", c.Adapters.Timeout))
	}
	if c.Analysis.Workers < 0 {
		errs = append(errs, fmt.Errorf("analysis.workers must be >= 0, got %d", c.Analysis.Workers))
	}
	switch c.Output.Format {
	case "", "text", "json", "markdown", "toon", "yaml":
	default:
		errs = append(errs, fmt.Errorf("output.format %q is not supported", c.Output.Format))
	}
	return errors.Join(errs...)
}

// AdapterTimeout returns the external tool timeout as a duration.
func (c *Config) AdapterTimeout() time.Duration {
	return time.Duration(c.Adapters.Timeout) * time.Second
}

// ShouldExclude checks if a slash- or OS-separated relative path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	path = filepath.ToSlash(path)

	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, "/"+dir+"/") || strings.HasPrefix(path, dir+"/") {
			return true
		}
	}

	ext := filepath.Ext(path)
	for _, excludeExt := range c.Exclude.Extensions {
		if ext == excludeExt {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}
