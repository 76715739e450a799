package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".recipecrawl"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the on-disk YAML configuration.
// It carries the inputs that are data rather than tuning: seed domains and
// the classifier term lists.
type File struct {
	// Seeds lists seed domains or URLs, one per entry.
	Seeds []string `yaml:"seeds"`

	// PositiveTerms are regular expressions that mark a URL as likely
	// recipe-related (e.g. "recipe", "rezept", "ricetta").
	PositiveTerms []string `yaml:"positive_terms"`

	// NegativeTerms are regular expressions that mark a URL as certainly
	// uninteresting (e.g. "login", "cart", "privacy"). Negative terms win
	// over positive ones.
	NegativeTerms []string `yaml:"negative_terms"`
}

// LoadConfigFile loads seeds and term lists from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound. Callers should
// handle this based on whether the path was explicitly specified.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. .recipecrawl in the current directory
//  3. .recipecrawl in the user's home directory
//
// Returns the path if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// Merge applies the file's contents onto the config. File seeds are appended
// after CLI seeds; term lists replace the built-in defaults when present.
func (c *Config) Merge(cf *File) {
	if cf == nil {
		return
	}
	c.Seeds = append(c.Seeds, cf.Seeds...)
	if len(cf.PositiveTerms) > 0 {
		c.PositiveTerms = cf.PositiveTerms
	}
	if len(cf.NegativeTerms) > 0 {
		c.NegativeTerms = cf.NegativeTerms
	}
}
