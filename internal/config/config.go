// Package config holds the benchmark settings: defaults, optional TOML or
// YAML file, then command-line overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"sobel-bench/internal/codec"
	"sobel-bench/internal/logger"
	"sobel-bench/internal/processing/gradient"
	"sobel-bench/internal/processing/partition"
)

var DefaultWorkerCounts = []int{1, 2, 4, 8, 16, 32}

var Formats = []string{"text", "json"}

type Config struct {
	Input         string `toml:"input" yaml:"input"`
	Synthetic     string `toml:"synthetic" yaml:"synthetic"`
	Output        string `toml:"output" yaml:"output"`
	WorkerCounts  []int  `toml:"workers" yaml:"workers"`
	Policy        string `toml:"policy" yaml:"policy"`
	Operator      string `toml:"operator" yaml:"operator"`
	Repeat        int    `toml:"repeat" yaml:"repeat"`
	Format        string `toml:"format" yaml:"format"`
	LogLevel      string `toml:"log_level" yaml:"log_level"`
	Verify        bool   `toml:"verify" yaml:"verify"`
	LockOSThreads bool   `toml:"lock_os_threads" yaml:"lock_os_threads"`
	Codec         string `toml:"codec" yaml:"codec"`
}

func Default() Config {
	return Config{
		WorkerCounts: append([]int(nil), DefaultWorkerCounts...),
		Policy:       partition.SpreadRemainder.String(),
		Operator:     "sobel",
		Repeat:       1,
		Format:       "text",
		LogLevel:     envOr("LOG_LEVEL", "info"),
		Verify:       true,
		Codec:        "std",
	}
}

// Load overlays the file at path on top of Default. The decoder is picked
// from the extension: .toml, .yaml or .yml.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := lo.Map(undecoded, func(k toml.Key, _ int) string { return k.String() })
			return cfg, fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(strings.NewReader(string(data)))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension %q (want .toml, .yaml or .yml)", filepath.Ext(path))
	}
	return cfg, nil
}

// Validate checks the settings that can be checked without running
// anything. Individual worker counts are left to the coordinator so a bad
// entry fails only its own iteration.
func (c Config) Validate() error {
	var errs []error

	if len(c.WorkerCounts) == 0 {
		errs = append(errs, errors.New("at least one worker count is required"))
	}
	if (c.Input == "") == (c.Synthetic == "") {
		errs = append(errs, errors.New("exactly one of input or synthetic must be set"))
	}
	if c.Repeat < 1 {
		errs = append(errs, fmt.Errorf("repeat must be at least 1, got %d", c.Repeat))
	}
	if !lo.Contains(Formats, c.Format) {
		errs = append(errs, fmt.Errorf("unknown report format %q (want %s)", c.Format, strings.Join(Formats, " or ")))
	}
	if _, err := partition.ParsePolicy(c.Policy); err != nil {
		errs = append(errs, err)
	}
	if _, err := gradient.Lookup(c.Operator); err != nil {
		errs = append(errs, err)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Codec != "" && !lo.Contains(codec.Backends(), strings.ToLower(c.Codec)) {
		errs = append(errs, fmt.Errorf("codec backend %q not available (built with: %s)",
			c.Codec, strings.Join(codec.Backends(), ", ")))
	}

	return errors.Join(errs...)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
