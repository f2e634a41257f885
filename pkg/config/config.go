package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the project directory and its parents
const FileName = ".depdrift.yaml"

// Config represents the configuration for depdrift
type Config struct {
	// Source of the dependency report: yarn or npm
	Source string `yaml:"source"`

	// Path to the yarn executable
	YarnPath string `yaml:"yarnPath"`

	// Custom registries for different package managers
	Registries struct {
		Npm string `yaml:"npm"`
	} `yaml:"registries"`

	// Severity levels reported for each bucket
	Severity struct {
		Major string `yaml:"major"` // Default: error
		Minor string `yaml:"minor"` // Default: warning
		Patch string `yaml:"patch"` // Default: info
	} `yaml:"severity"`

	// Output configuration
	Output struct {
		Format string `yaml:"format"` // text, json, markdown, sarif
		File   string `yaml:"file"`   // Output file path (stdout if empty)
	} `yaml:"output"`

	// Ignore specific packages
	IgnorePackages []string `yaml:"ignorePackages"`

	// Require full MAJOR.MINOR.PATCH versions
	Strict bool `yaml:"strict"`

	// Fail when a bucket at or above this level is not empty: major, minor or patch
	FailOn string `yaml:"failOn"`

	// Parallel registry requests for the npm source
	Concurrency int `yaml:"concurrency"`
}

var (
	validSources    = []string{"yarn", "npm"}
	validFormats    = []string{"text", "json", "markdown", "sarif"}
	validSeverities = []string{"error", "warning", "info", "none"}
	validFailOn     = []string{"", "major", "minor", "patch"}
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	config := &Config{
		Source:      "yarn",
		YarnPath:    "yarn",
		Concurrency: 8,
	}

	// Set default severity levels
	config.Severity.Major = "error"
	config.Severity.Minor = "warning"
	config.Severity.Patch = "info"

	// Set default output format
	config.Output.Format = "text"

	return config
}

// LoadConfig loads the configuration from the specified file path
// If no path is provided, it looks for .depdrift.yaml in the current directory
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	// If no config path provided, look in current directory
	if configPath == "" {
		configPath = FileName
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return config, nil
		}
	}

	if err := readInto(configPath, config); err != nil {
		return nil, err
	}
	return config, nil
}

// FindAndLoadConfig searches for a config file in the project directory and its parents
func FindAndLoadConfig(projectPath string) (*Config, error) {
	config := DefaultConfig()

	currentDir, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, fmt.Errorf("error resolving project path: %w", err)
	}

	for {
		configPath := filepath.Join(currentDir, FileName)
		if _, err := os.Stat(configPath); err == nil {
			if err := readInto(configPath, config); err != nil {
				return nil, err
			}
			return config, nil
		}

		// Move up to the parent directory
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached the root directory, no config file found
			break
		}
		currentDir = parentDir
	}

	return config, nil
}

func readInto(configPath string, config *Config) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("error reading config file %s: %w", configPath, err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("error parsing config file %s: %w", configPath, err)
	}

	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid config file %s: %w", configPath, err)
	}
	return nil
}

// Validate checks the enumerated settings
func (c *Config) Validate() error {
	if !slices.Contains(validSources, c.Source) {
		return fmt.Errorf("unknown source %q", c.Source)
	}
	if !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("unknown output format %q", c.Output.Format)
	}
	for bucket, severity := range map[string]string{"major": c.Severity.Major, "minor": c.Severity.Minor, "patch": c.Severity.Patch} {
		if !slices.Contains(validSeverities, severity) {
			return fmt.Errorf("unknown severity %q for %s updates", severity, bucket)
		}
	}
	if !slices.Contains(validFailOn, c.FailOn) {
		return fmt.Errorf("unknown failOn level %q", c.FailOn)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	return nil
}

// IsPackageIgnored checks if a package should be ignored based on the configuration
func (c *Config) IsPackageIgnored(packageName string) bool {
	for _, ignoredPackage := range c.IgnorePackages {
		if ignoredPackage == packageName {
			return true
		}
		if matched, _ := filepath.Match(ignoredPackage, packageName); matched {
			return true
		}
	}
	return false
}

// GetSeverityForUpdate returns the configured severity level for the given update type
func (c *Config) GetSeverityForUpdate(updateType string) string {
	switch updateType {
	case "major":
		return c.Severity.Major
	case "minor":
		return c.Severity.Minor
	case "patch":
		return c.Severity.Patch
	default:
		return "info"
	}
}
