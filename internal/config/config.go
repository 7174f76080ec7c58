package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultFileName   = ".maciespectre.yaml"
	alternateFileName = ".maciespectre.yml"
)

// Config holds persistent defaults loaded from a config file. Command-line
// flags override every field.
type Config struct {
	Profile      string   `yaml:"profile"`
	Region       string   `yaml:"region"`
	Regions      []string `yaml:"regions"`
	Sample       int      `yaml:"sample"`
	Concurrency  int      `yaml:"concurrency"`
	RPS          float64  `yaml:"rps"`
	Format       string   `yaml:"format"`
	Timeout      string   `yaml:"timeout"`
	Severity     string   `yaml:"severity"`
	ExportBucket string   `yaml:"export_bucket"`
	KMSKey       string   `yaml:"kms_key"`
	Accounts     []string `yaml:"accounts"`
}

// TimeoutDuration parses the Timeout field as a Go duration.
// Returns 0 if empty or unparseable.
func (c *Config) TimeoutDuration() time.Duration {
	if c.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// Validate rejects values no command could use.
func (c *Config) Validate() error {
	if c.Sample != 0 && (c.Sample < 1 || c.Sample > 100) {
		return fmt.Errorf("sample must be between 1 and 100, got %d", c.Sample)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	if c.RPS < 0 {
		return fmt.Errorf("rps must not be negative, got %v", c.RPS)
	}
	if c.Timeout != "" && c.TimeoutDuration() == 0 {
		return fmt.Errorf("invalid timeout %q", c.Timeout)
	}
	return nil
}

// AccountSet returns the configured account allow-list, or nil when every
// account is allowed.
func (c *Config) AccountSet() map[string]struct{} {
	if len(c.Accounts) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(c.Accounts))
	for _, a := range c.Accounts {
		set[a] = struct{}{}
	}
	return set
}

// Load searches for a config file in the given directory and the user's home
// directory. Returns a zero-value Config if no file is found.
func Load(dir string) (Config, error) {
	paths := searchPaths(dir)
	for _, p := range paths {
		cfg, found, err := loadPath(p)
		if err != nil {
			return Config{}, err
		}
		if found {
			return cfg, nil
		}
	}
	return Config{}, nil
}

func searchPaths(dir string) []string {
	var paths []string
	if dir != "" {
		paths = append(paths, filepath.Join(dir, defaultFileName))
		paths = append(paths, filepath.Join(dir, alternateFileName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, defaultFileName))
		paths = append(paths, filepath.Join(home, alternateFileName))
	}
	return paths
}

func loadPath(path string) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, false, nil
		}
		return Config{}, false, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, false, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, false, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, true, nil
}
