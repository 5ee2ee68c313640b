package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/attackbuild/internal/foundation/errors"
)

// DefaultPath is the configuration file read when --config is not given.
const DefaultPath = "attackbuild.yaml"

// Config represents the build configuration.
type Config struct {
	Paths        PathsConfig              `yaml:"paths"`
	Stix         StixConfig               `yaml:"stix"`
	Generators   map[string]CommandConfig `yaml:"generators,omitempty"`
	WebsiteBuild CommandConfig            `yaml:"website_build"`
	Tests        TestsConfig              `yaml:"tests"`
	Metrics      MetricsConfig            `yaml:"metrics"`
	History      HistoryConfig            `yaml:"history"`
	Logging      LoggingConfig            `yaml:"logging"`
}

// PathsConfig locates the site's working directories.
type PathsConfig struct {
	Content string `yaml:"content"` // site sources; never removed by clean
	Output  string `yaml:"output"`  // generated site
	Data    string `yaml:"data"`    // generated data (STIX bundles, menu)
	Reports string `yaml:"reports"` // test reports
}

// StixConfig describes where STIX bundles come from.
type StixConfig struct {
	Repository string   `yaml:"repository"`
	Branch     string   `yaml:"branch"`
	Depth      int      `yaml:"depth"`
	Checkout   string   `yaml:"checkout"`
	Bundles    []string `yaml:"bundles"`
	SiteURL    string   `yaml:"site_url"`
}

// CommandConfig is an external program a module delegates to.
type CommandConfig struct {
	Command []string          `yaml:"command,omitempty"`
	Dir     string            `yaml:"dir,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
}

// Configured reports whether a command is set.
func (c CommandConfig) Configured() bool { return len(c.Command) > 0 }

// TestsConfig configures the site tests.
type TestsConfig struct {
	SizeLimitMB     int64         `yaml:"size_limit_mb"`
	MaxPrintedLines int           `yaml:"max_printed_lines"`
	Links           CommandConfig `yaml:"links"`
	ExternalLinks   CommandConfig `yaml:"external_links"`
}

// MetricsConfig configures metrics export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// HistoryConfig configures the build history database.
type HistoryConfig struct {
	Database string `yaml:"database,omitempty"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	_ = applyDefaults(cfg)
	return cfg
}

// Load reads the configuration at path. When explicit is false a missing
// file yields the defaults; an explicitly requested file must exist.
func Load(path string, explicit bool) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			Fatal().
			Path(path).
			Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "invalid config file").
			Fatal().
			Path(path).
			Build()
	}
	return cfg, nil
}

// Parse decodes YAML configuration, expanding environment variables first,
// then applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
