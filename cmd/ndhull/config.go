// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package main

import (
	"math"
	"os"
	"slices"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

var formats = []string{"json", "geojson", "svg"}

// Config holds the settings shared by all commands.
type Config struct {
	// Scale multiplies coordinates before they are snapped to integers;
	// zero selects one from the data.
	Scale    float64 `yaml:"scale"`
	Improve  int     `yaml:"improve"`
	Format   string  `yaml:"format"`
	Output   string  `yaml:"output"`
	LogLevel string  `yaml:"log_level"`
}

func defaultConfig() Config {
	return Config{
		Format:   "json",
		LogLevel: "warn",
	}
}

// loadConfig reads a YAML config file over the defaults. An empty path
// yields the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "reading config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if math.IsNaN(c.Scale) || math.IsInf(c.Scale, 0) || c.Scale < 0 {
		return errors.Errorf("scale %v must be non-negative and finite", c.Scale)
	}
	if c.Improve < 0 {
		return errors.Errorf("improve %d must be non-negative", c.Improve)
	}
	if !slices.Contains(formats, c.Format) {
		return errors.Errorf("unknown format %q, want one of %v", c.Format, formats)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "log level")
	}
	return nil
}

func (c Config) logger() (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}
