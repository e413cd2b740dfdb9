package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/CTAG07/Glossa/pkg/markov"
	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

const (
	// SourceAll builds one model from the definitions of every entry.
	SourceAll = "all"
	// SourceWord builds the model from a single randomly picked entry.
	SourceWord = "word"
)

// ErrInvalidConfig is returned by Validate for any rejected value.
var ErrInvalidConfig = errors.New("invalid configuration")

// GenerationConfig holds the settings used to build chains and generate text.
type GenerationConfig struct {
	Order       int    `json:"order" yaml:"order"`
	Iterations  int    `json:"iterations" yaml:"iterations"`
	Source      string `json:"source" yaml:"source"`
	MaxAttempts int    `json:"max_attempts" yaml:"max_attempts"`
	Seed        uint64 `json:"seed" yaml:"seed"`
}

// ServerConfig holds the configuration for the HTTP API.
type ServerConfig struct {
	Addr               string `json:"addr" yaml:"addr"`
	MaxIterations      int    `json:"max_iterations" yaml:"max_iterations"`
	MaxOrder           int    `json:"max_order" yaml:"max_order"`
	ReadTimeoutSec     int    `json:"read_timeout_sec" yaml:"read_timeout_sec"`
	ShutdownTimeoutSec int    `json:"shutdown_timeout_sec" yaml:"shutdown_timeout_sec"`
}

// Config is the top-level configuration struct.
type Config struct {
	LogLevel       string           `json:"log_level" yaml:"log_level"`
	DatabasePath   string           `json:"database_path" yaml:"database_path"`
	DictionaryPath string           `json:"dictionary_path" yaml:"dictionary_path"`
	Lowercase      bool             `json:"lowercase" yaml:"lowercase"`
	Generation     GenerationConfig `json:"generation_config" yaml:"generation_config"`
	Server         ServerConfig     `json:"server_config" yaml:"server_config"`
}

// DefaultConfig creates a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:       "info",
		DatabasePath:   "./data/glossa.db",
		DictionaryPath: "",
		Lowercase:      true,
		Generation: GenerationConfig{
			Order:       2,
			Iterations:  500,
			Source:      SourceWord,
			MaxAttempts: 0,
			Seed:        0,
		},
		Server: ServerConfig{
			Addr:               ":7280",
			MaxIterations:      10000,
			MaxOrder:           8,
			ReadTimeoutSec:     10,
			ShutdownTimeoutSec: 10,
		},
	}
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func marshalConfig(path string, config *Config) ([]byte, error) {
	if isYAML(path) {
		return yaml.Marshal(config)
	}
	return json.MarshalIndent(config, "", "  ")
}

// LoadConfig reads the configuration from a JSON or YAML file at the given
// path, picking the format by extension. If the file doesn't exist, it
// creates one with default values.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		// If the file doesn't exist, create it with the default config.
		if os.IsNotExist(err) {
			var data []byte
			data, err = marshalConfig(path, config)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// Still usable with defaults.
				fmt.Fprintf(os.Stderr, "warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if isYAML(path) {
		err = yaml.Unmarshal(file, config)
	} else {
		err = json.Unmarshal(file, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Validate reports the first unusable value in c.
func (c *Config) Validate() error {
	if _, ok := parseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.Generation.Order < 1 {
		return fmt.Errorf("%w: generation order %d: %w", ErrInvalidConfig, c.Generation.Order, markov.ErrInvalidOrder)
	}
	if c.Generation.Iterations < 1 {
		return fmt.Errorf("%w: iterations must be positive, got %d", ErrInvalidConfig, c.Generation.Iterations)
	}
	if c.Generation.MaxAttempts < 0 {
		return fmt.Errorf("%w: max attempts must not be negative, got %d", ErrInvalidConfig, c.Generation.MaxAttempts)
	}
	switch c.Generation.Source {
	case SourceAll, SourceWord:
	default:
		return fmt.Errorf("%w: unknown source %q (want %q or %q)", ErrInvalidConfig, c.Generation.Source, SourceAll, SourceWord)
	}
	if c.Server.MaxIterations < 1 {
		return fmt.Errorf("%w: server max iterations must be positive, got %d", ErrInvalidConfig, c.Server.MaxIterations)
	}
	if c.Server.MaxOrder < 1 {
		return fmt.Errorf("%w: server max order must be positive, got %d", ErrInvalidConfig, c.Server.MaxOrder)
	}
	// The generation defaults are also the API defaults, so they must fit
	// under the server limits.
	if c.Generation.Iterations > c.Server.MaxIterations {
		return fmt.Errorf("%w: iterations %d exceed server max iterations %d", ErrInvalidConfig, c.Generation.Iterations, c.Server.MaxIterations)
	}
	if c.Generation.Order > c.Server.MaxOrder {
		return fmt.Errorf("%w: order %d exceeds server max order %d", ErrInvalidConfig, c.Generation.Order, c.Server.MaxOrder)
	}
	return nil
}
