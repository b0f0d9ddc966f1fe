// Package config loads scan defaults from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given and the file exists.
const DefaultPath = ".urlspan.yaml"

// Config holds defaults for the scan and extract commands.
type Config struct {
	Output        string   `yaml:"output"`         // datastore path
	Format        string   `yaml:"format"`         // human, json, sarif
	Color         string   `yaml:"color"`          // auto, always, never
	ContextLines  int      `yaml:"context_lines"`  // lines of context around each URL
	MaxFileSize   int64    `yaml:"max_file_size"`  // bytes, 0 = unlimited
	IncludeHidden bool     `yaml:"include_hidden"` // scan dotfiles
	Extract       string   `yaml:"extract"`        // pdf,docx,xlsx,html or all
	Incremental   bool     `yaml:"incremental"`    // skip blobs already in the datastore
	Dedupe        string   `yaml:"dedupe"`         // location or url
	Schemes       []string `yaml:"schemes"`        // URL schemes to recognize
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Output:       "urlspan.db",
		Format:       "human",
		Color:        "auto",
		ContextLines: 3,
		MaxFileSize:  10 * 1024 * 1024,
		Dedupe:       "location",
		Schemes:      []string{"http", "https"},
	}
}

// Load reads a YAML config file on top of the defaults.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return Decode(file)
}

// LoadOptional loads path if it exists and returns the defaults otherwise.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Decode reads YAML from r on top of the defaults. Unknown keys are errors.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch c.Format {
	case "human", "json", "sarif":
	default:
		return fmt.Errorf("invalid format %q (want human, json or sarif)", c.Format)
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color %q (want auto, always or never)", c.Color)
	}
	switch c.Dedupe {
	case "location", "url":
	default:
		return fmt.Errorf("invalid dedupe %q (want location or url)", c.Dedupe)
	}
	if c.ContextLines < 0 {
		return fmt.Errorf("context_lines must not be negative")
	}
	if c.MaxFileSize < 0 {
		return fmt.Errorf("max_file_size must not be negative")
	}
	return nil
}

// Save writes the config as YAML.
func Save(path string, cfg *Config) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	defer encoder.Close()

	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config to file: %w", err)
	}
	return nil
}
