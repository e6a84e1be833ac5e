// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aboualiaa/freesurfer-sub000/glm"
)

var errConfig = errors.New("glmcheck: invalid config")

// Config is the YAML configuration. Flags given on the command line
// override the file.
type Config struct {
	LogLevel string    `yaml:"log_level"`
	Seed     uint64    `yaml:"seed"`
	GLM      GLMConfig `yaml:"glm"`

	Resynth ResynthConfig     `yaml:"resynth"`
	Profile glm.ProfileConfig `yaml:"profile"`
	Batch   BatchConfig       `yaml:"batch"`
}

// GLMConfig maps onto glm options.
type GLMConfig struct {
	AllowZeroDOF       bool    `yaml:"allow_zero_dof"`
	RescaleDesign      bool    `yaml:"rescale_design"`
	PartialCorrelation bool    `yaml:"partial_correlation"`
	ConditionTolerance float64 `yaml:"condition_tolerance"`
}

// ResynthConfig sizes the resynthesis self-test.
type ResynthConfig struct {
	Iterations int `yaml:"iterations"`
}

// BatchConfig sizes the batch demo.
type BatchConfig struct {
	Rows    int     `yaml:"rows"`
	Cols    int     `yaml:"cols"`
	Units   int     `yaml:"units"`
	Workers int     `yaml:"workers"`
	FFXDOF  float64 `yaml:"ffx_dof"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Seed:     1,
		GLM:      GLMConfig{ConditionTolerance: glm.DefaultConditionTolerance},
		Resynth:  ResynthConfig{Iterations: 1000},
		Profile:  glm.DefaultProfileConfig(),
		Batch:    BatchConfig{Rows: 100, Cols: 10, Units: 1000},
	}
}

// LoadConfig reads path over the defaults. An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("glmcheck: read config: %w", err)
	}
	if err = yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("glmcheck: parse config %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// Validate checks values the commands cannot recover from.
func (c Config) Validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch {
	case !(c.GLM.ConditionTolerance > 1) || c.GLM.ConditionTolerance > math.MaxFloat64:
		return fmt.Errorf("glm.condition_tolerance=%g: %w", c.GLM.ConditionTolerance, errConfig)
	case c.Resynth.Iterations < 1:
		return fmt.Errorf("resynth.iterations=%d: %w", c.Resynth.Iterations, errConfig)
	case c.Batch.Cols < 1 || c.Batch.Rows <= c.Batch.Cols:
		return fmt.Errorf("batch rows=%d cols=%d: %w", c.Batch.Rows, c.Batch.Cols, errConfig)
	case c.Batch.Units < 0:
		return fmt.Errorf("batch.units=%d: %w", c.Batch.Units, errConfig)
	case c.Batch.FFXDOF < 0:
		return fmt.Errorf("batch.ffx_dof=%g: %w", c.Batch.FFXDOF, errConfig)
	}

	return nil
}

// Options converts the glm section.
func (c GLMConfig) Options(l *slog.Logger) []glm.Option {
	return []glm.Option{
		glm.WithAllowZeroDOF(c.AllowZeroDOF),
		glm.WithRescaleDesign(c.RescaleDesign),
		glm.WithPartialCorrelation(c.PartialCorrelation),
		glm.WithConditionTolerance(c.ConditionTolerance),
		glm.WithLogger(l),
	}
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return l, fmt.Errorf("log level %q: %w", s, errConfig)
	}

	return l, nil
}
