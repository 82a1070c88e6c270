package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete pipeline configuration
type Config struct {
	Dataset DatasetConfig `yaml:"dataset" envconfig:"DATASET"`
	Output  OutputConfig  `yaml:"output" envconfig:"OUTPUT"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
}

// DatasetConfig describes the remote dataset to fetch
type DatasetConfig struct {
	URL     string        `yaml:"url" envconfig:"URL"`
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
}

// OutputConfig describes where the aggregated table is written
type OutputConfig struct {
	Dir      string `yaml:"dir" envconfig:"DIR"`
	BaseName string `yaml:"base_name" envconfig:"BASE_NAME"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// DefaultConfigFile is the optional YAML overlay looked up in the
// working directory.
const DefaultConfigFile = "config.yaml"

// DefaultDatasetURL is the CSO EDA14 retention dataset CSV endpoint.
const DefaultDatasetURL = "https://ws.cso.ie/public/api.restful/PxStat.Data.Cube_API.ReadDataset/EDA14/CSV/1.0/en."

// Default returns the built-in configuration. A bare run needs no
// environment and no config file.
func Default() *Config {
	return &Config{
		Dataset: DatasetConfig{
			URL:     DefaultDatasetURL,
			Timeout: 30 * time.Second,
		},
		Output: OutputConfig{
			Dir:      "transformed",
			BaseName: "processed_student_data",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "text",
			Output:   "console",
			FilePath: "logs/retention.log",
		},
	}
}

// Load builds the configuration from built-in defaults, an optional YAML
// file, and environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFromFile(DefaultConfigFile)
}

// LoadFromFile is Load with an explicit overlay path, used by tests.
func LoadFromFile(configFile string) (*Config, error) {
	cfg := *Default()

	if _, err := os.Stat(configFile); err == nil {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(cfg, *fileConfig)
	}

	// Environment variables win over both defaults and the file. Fields
	// without a matching RETENTION_* variable are left untouched.
	if err := envconfig.Process("RETENTION", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs overlays the file config onto the base where the file set a value
func mergeConfigs(base, file Config) Config {
	if file.Dataset.URL != "" {
		base.Dataset.URL = file.Dataset.URL
	}
	if file.Dataset.Timeout != 0 {
		base.Dataset.Timeout = file.Dataset.Timeout
	}
	if file.Output.Dir != "" {
		base.Output.Dir = file.Output.Dir
	}
	if file.Output.BaseName != "" {
		base.Output.BaseName = file.Output.BaseName
	}
	if file.Logging.Level != "" {
		base.Logging.Level = file.Logging.Level
	}
	if file.Logging.Format != "" {
		base.Logging.Format = file.Logging.Format
	}
	if file.Logging.Output != "" {
		base.Logging.Output = file.Logging.Output
	}
	if file.Logging.FilePath != "" {
		base.Logging.FilePath = file.Logging.FilePath
	}
	return base
}

// Validate checks the configuration for values the pipeline cannot run with
func (c *Config) Validate() error {
	if c.Dataset.URL == "" {
		return fmt.Errorf("dataset URL must not be empty")
	}
	if c.Dataset.Timeout <= 0 {
		return fmt.Errorf("dataset timeout must be positive, got %v", c.Dataset.Timeout)
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output directory must not be empty")
	}
	if c.Output.BaseName == "" {
		return fmt.Errorf("output base name must not be empty")
	}
	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("logging output must be console, file, or both, got %q", c.Logging.Output)
	}
	return nil
}
