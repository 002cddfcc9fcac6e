// Package config gathers cytoterm settings from a YAML file, CYTOTERM_*
// environment variables and command line flags, in that order of precedence
// from lowest to highest.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/yumyai/cytoterm/logger"
	"github.com/yumyai/cytoterm/pkg/cytoband"
)

type LinkConfig struct {
	Enabled bool   `yaml:"enabled"`
	Levels  string `yaml:"levels"` // level name or "all"
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	Compress   bool   `yaml:"compress"`
}

type Config struct {
	Header          cytoband.Header `yaml:"header"`
	Link            LinkConfig      `yaml:"link"`
	ChromosomeRoots bool            `yaml:"chromosome_roots"`
	SiblingLinks    bool            `yaml:"sibling_links"`
	Store           string          `yaml:"store"`
	Listen          string          `yaml:"listen"`
	Log             LogConfig       `yaml:"log"`
}

func Default() *Config {
	return &Config{
		Header: cytoband.DefaultHeader(),
		Link:   LinkConfig{Levels: "band"},
		Store:  "./data/cytoterm.db",
		Listen: "0.0.0.0:8080",
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
		},
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default value.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from CYTOTERM_* variables that are set.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("CYTOTERM_STORE"); v != "" {
		c.Store = v
	}
	if v := os.Getenv("CYTOTERM_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("CYTOTERM_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("CYTOTERM_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("CYTOTERM_CENTROMERE_LEVELS"); v != "" {
		c.Link.Levels = v
	}
	if v := os.Getenv("CYTOTERM_LINK_ACROSS_CENTROMERE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CYTOTERM_LINK_ACROSS_CENTROMERE: %w", err)
		}
		c.Link.Enabled = b
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if _, err := cytoband.ParseLinkLevels(c.Link.Levels); err != nil {
		errs = append(errs, fmt.Errorf("link.levels: %w", err))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Header.URL == "" {
		errs = append(errs, errors.New("header.url must not be empty"))
	}
	if c.Header.ResourceType == "" {
		errs = append(errs, errors.New("header.resource_type must not be empty"))
	}
	return errors.Join(errs...)
}

// PipelineOptions converts the settings into conversion options.
func (c *Config) PipelineOptions() (cytoband.Options, error) {
	levels, err := cytoband.ParseLinkLevels(c.Link.Levels)
	if err != nil {
		return cytoband.Options{}, err
	}
	return cytoband.Options{
		LinkAcrossCentromere: c.Link.Enabled,
		CentromereLevels:     levels,
		ChromosomeRoots:      c.ChromosomeRoots,
		SiblingLinks:         c.SiblingLinks,
		Header:               c.Header,
	}, nil
}

func (c *Config) LoggerConfig() (logger.Config, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return logger.Config{}, err
	}
	return logger.Config{
		Level:      level,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		Compress:   c.Log.Compress,
	}, nil
}
