package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete converter configuration.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Paths      PathsConfig      `yaml:"paths" envconfig:"PATHS"`
	Conversion ConversionConfig `yaml:"conversion" envconfig:"CONVERSION"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format      string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stdout file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// PathsConfig contains file system paths. Relative values resolve against
// the executable directory, see ResolvePaths.
type PathsConfig struct {
	DataDir       string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	LogsDir       string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
	ReferenceFile string `yaml:"reference_file" envconfig:"REFERENCE_FILE" validate:"required"`
}

// ConversionConfig contains pipeline behavior switches.
type ConversionConfig struct {
	// StrictExtra escalates extra columns on designated sheets from a
	// warning to a run-aborting violation.
	StrictExtra bool `yaml:"strict_extra" envconfig:"STRICT_EXTRA"`
}

// Load builds the configuration in three layers: built-in defaults, then the
// YAML config file when one exists, then TALLY_* environment variables. An
// empty configFile falls back to the well-known locations.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process("TALLY", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg. Keys absent from the file
// keep their current values.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate checks the assembled configuration against the struct tags.
func (c *Config) validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, len(verrs))
		for i, fe := range verrs {
			fields[i] = fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("config validation failed: %s", strings.Join(fields, ", "))
	}
	return fmt.Errorf("config validation failed: %w", err)
}

// findConfigFile returns the first config file found in the well-known
// locations, or "" when none exists.
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/converter.log",
		},
		Paths: PathsConfig{
			DataDir:       "data",
			LogsDir:       "logs",
			ReferenceFile: filepath.Join("data", "reference_headers.xlsx"),
		},
	}
}
