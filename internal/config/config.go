package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cloudmap/cloudmap/internal/models"
)

// Config is the top-level application configuration.
// It is loaded from ~/.config/cloudmap/config.yaml and must never hold
// credentials; those come from the SDK chains or the credential prompt.
type Config struct {
	AWS   AWSConfig   `yaml:"aws"   json:"aws"`
	Azure AzureConfig `yaml:"azure" json:"azure"`
	Scan  ScanConfig  `yaml:"scan"  json:"scan"`
}

// AWSConfig holds AWS-specific defaults used when flags are not provided.
type AWSConfig struct {
	// Region is the home region when no --region flag is given.
	Region string `yaml:"region" json:"region"`

	// Profile is used when no --profile flag is provided.
	Profile string `yaml:"profile" json:"profile"`
}

// AzureConfig holds Azure-specific defaults.
type AzureConfig struct {
	// SubscriptionID is used when no --subscription flag is given. The
	// literal "subscription_id" is treated as unset.
	SubscriptionID string `yaml:"subscription_id" json:"subscription_id"`
}

// ScanConfig holds scan defaults.
type ScanConfig struct {
	// Categories restricts scans when no --category flag is given.
	Categories []string `yaml:"categories" json:"categories"`

	// Timeout bounds a whole scan. Zero means no limit.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// Loader is the interface for reading Config from disk.
type Loader interface {
	// Load reads, parses, and validates the configuration file.
	Load() (*Config, error)

	// ConfigPath returns the absolute path to the configuration file.
	ConfigPath() string
}

// FileLoader reads Config from a YAML file. A missing file yields the
// default (empty) configuration.
type FileLoader struct {
	path string
}

// NewFileLoader returns a loader for path. An empty path selects DefaultPath.
func NewFileLoader(path string) (*FileLoader, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &FileLoader{path: path}, nil
}

// DefaultPath returns ~/.config/cloudmap/config.yaml, honouring
// XDG_CONFIG_HOME when set.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(dir, "cloudmap", "config.yaml"), nil
}

// ConfigPath implements Loader.
func (l *FileLoader) ConfigPath() string { return l.path }

// Load implements Loader.
func (l *FileLoader) Load() (*Config, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", l.path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", l.path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", l.path, err)
	}
	return &cfg, nil
}

// Validate checks category names and the timeout.
func (c *Config) Validate() error {
	if _, err := c.ScanCategories(); err != nil {
		return err
	}
	if c.Scan.Timeout < 0 {
		return fmt.Errorf("scan.timeout must not be negative, got %s", c.Scan.Timeout)
	}
	return nil
}

// ScanCategories parses Scan.Categories.
func (c *Config) ScanCategories() ([]models.Category, error) {
	out := make([]models.Category, 0, len(c.Scan.Categories))
	for _, name := range c.Scan.Categories {
		cat, err := models.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("scan.categories: %w", err)
		}
		out = append(out, cat)
	}
	return out, nil
}
