// SPDX-License-Identifier: MIT

// Package config loads the lvsynth command configuration: a YAML file
// overlaid with LVSYNTH_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/lvsynth/correlation"
	"github.com/katalvlaran/lvsynth/distribution"
	"github.com/katalvlaran/lvsynth/pipeline"
	"github.com/katalvlaran/lvsynth/store"
)

// Config holds all command configuration.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Generate GenerateConfig `yaml:"generate"`

	// Store persists the built model when Kind is set.
	Store store.Config `yaml:"store"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// PipelineConfig mirrors pipeline.Options.
type PipelineConfig struct {
	MinCorrelation         float64  `yaml:"min_correlation"`
	MaxVariables           int      `yaml:"max_variables"`
	DistributionCandidates []string `yaml:"distribution_candidates"`
	ValidationSplit        float64  `yaml:"validation_split"`
	CorrelationMethod      string   `yaml:"correlation_method"`
	Seed                   int64    `yaml:"seed"`
	Workers                int      `yaml:"workers"`
}

// GenerateConfig controls sampling.
type GenerateConfig struct {
	Samples   int    `yaml:"samples"`
	ModelName string `yaml:"model_name"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log:      LogConfig{Level: "info", Format: "text"},
		Pipeline: PipelineConfig{CorrelationMethod: string(correlation.Pearson), Workers: 1},
		Generate: GenerateConfig{Samples: 1000, ModelName: "survey"},
	}
}

// Load reads path (skipped when empty), applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := decode(raw, &cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// decode is strict: unknown keys are errors. An empty document keeps defaults.
func decode(raw []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

func (c *Config) applyEnv() {
	c.Log.Level = getEnv("LVSYNTH_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LVSYNTH_LOG_FORMAT", c.Log.Format)

	p := &c.Pipeline
	p.MinCorrelation = getEnvFloat("LVSYNTH_MIN_CORRELATION", p.MinCorrelation)
	p.MaxVariables = getEnvInt("LVSYNTH_MAX_VARIABLES", p.MaxVariables)
	p.DistributionCandidates = getEnvSlice("LVSYNTH_DISTRIBUTIONS", p.DistributionCandidates)
	p.ValidationSplit = getEnvFloat("LVSYNTH_VALIDATION_SPLIT", p.ValidationSplit)
	p.CorrelationMethod = getEnv("LVSYNTH_CORRELATION_METHOD", p.CorrelationMethod)
	p.Seed = getEnvInt64("LVSYNTH_SEED", p.Seed)
	p.Workers = getEnvInt("LVSYNTH_WORKERS", p.Workers)

	c.Generate.Samples = getEnvInt("LVSYNTH_SAMPLES", c.Generate.Samples)
	c.Generate.ModelName = getEnv("LVSYNTH_MODEL_NAME", c.Generate.ModelName)

	c.Store.Kind = getEnv("LVSYNTH_STORE_KIND", c.Store.Kind)
	c.Store.DSN = getEnv("LVSYNTH_STORE_DSN", c.Store.DSN)
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Sprintf("log.format must be text or json, got %q", c.Log.Format))
	}

	p := c.Pipeline
	if p.MinCorrelation < 0 || p.MinCorrelation > 1 {
		errs = append(errs, "pipeline.min_correlation must be within [0,1]")
	}
	if p.MaxVariables < 0 || p.MaxVariables == 1 {
		errs = append(errs, "pipeline.max_variables must be 0 or at least 2")
	}
	if !(p.ValidationSplit >= 0 && p.ValidationSplit < 1) {
		errs = append(errs, "pipeline.validation_split must be within [0,1)")
	}
	if _, err := correlation.ParseMethod(p.CorrelationMethod); err != nil {
		errs = append(errs, "pipeline.correlation_method: "+err.Error())
	}
	if _, err := distribution.ParseFamilies(p.DistributionCandidates); err != nil {
		errs = append(errs, "pipeline.distribution_candidates: "+err.Error())
	}
	if c.Generate.Samples < 0 {
		errs = append(errs, "generate.samples must be non-negative")
	}
	if c.Store.Kind != "" && c.Store.DSN == "" {
		errs = append(errs, "store.dsn is required when store.kind is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return l, fmt.Errorf("log.level: %w", err)
	}

	return l, nil
}

// PipelineOptions converts the pipeline section.
func (c *Config) PipelineOptions(logger *slog.Logger) pipeline.Options {
	p := c.Pipeline

	return pipeline.Options{
		MinCorrelation:         p.MinCorrelation,
		MaxVariables:           p.MaxVariables,
		DistributionCandidates: append([]string(nil), p.DistributionCandidates...),
		ValidationSplit:        p.ValidationSplit,
		CorrelationMethod:      correlation.Method(p.CorrelationMethod),
		Seed:                   p.Seed,
		Workers:                p.Workers,
		Logger:                 logger,
	}
}
