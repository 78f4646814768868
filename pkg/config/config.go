// Package config loads and saves the smfcodec settings file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/james-see/smfcodec/pkg/converter"
	"github.com/james-see/smfcodec/pkg/smf"
)

// ServerConfig stores REST server settings
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Config is the main configuration structure
type Config struct {
	Strict        bool         `yaml:"strict"`
	SkipInvalid   bool         `yaml:"skip_invalid"`
	RunningStatus string       `yaml:"running_status"`
	MaxChunkSize  uint32       `yaml:"max_chunk_size,omitempty"`
	TextEncoding  string       `yaml:"text_encoding"`
	Server        ServerConfig `yaml:"server"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		RunningStatus: smf.PreserveRunningStatus.String(),
		MaxChunkSize:  64 << 20,
		TextEncoding:  string(converter.TextUTF8),
		Server:        ServerConfig{Port: 8080},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "smfcodec"), nil
}

// ConfigPath returns the full path to config.yaml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config from the default location, or returns defaults
// if there is none
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. Keys missing from the file keep
// their default values; a missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the default location
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks the enumerated settings
func (c *Config) Validate() error {
	if _, err := smf.ParseRunningStatusPolicy(c.RunningStatus); err != nil {
		return err
	}
	if _, err := converter.ParseTextEncoding(c.TextEncoding); err != nil {
		return err
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	return nil
}

// ConverterOptions turns the settings into converter options
func (c *Config) ConverterOptions() (converter.Options, error) {
	policy, err := smf.ParseRunningStatusPolicy(c.RunningStatus)
	if err != nil {
		return converter.Options{}, err
	}
	enc, err := converter.ParseTextEncoding(c.TextEncoding)
	if err != nil {
		return converter.Options{}, err
	}
	return converter.Options{
		Strict:       c.Strict,
		SkipInvalid:  c.SkipInvalid,
		Policy:       policy,
		MaxChunkSize: c.MaxChunkSize,
		TextEncoding: enc,
	}, nil
}
