package config

import "path/filepath"

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

func defaultAppliers() []DefaultApplier {
	return []DefaultApplier{
		&pathsDefaultApplier{},
		&stixDefaultApplier{},
		&websiteBuildDefaultApplier{},
		&testsDefaultApplier{},
		&loggingDefaultApplier{},
	}
}

func applyDefaults(cfg *Config) error {
	for _, a := range defaultAppliers() {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}

type pathsDefaultApplier struct{}

func (pathsDefaultApplier) Domain() string { return "paths" }

func (pathsDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Paths.Content == "" {
		cfg.Paths.Content = "content"
	}
	if cfg.Paths.Output == "" {
		cfg.Paths.Output = "output"
	}
	if cfg.Paths.Data == "" {
		cfg.Paths.Data = "data"
	}
	if cfg.Paths.Reports == "" {
		cfg.Paths.Reports = "reports"
	}
	return nil
}

type stixDefaultApplier struct{}

func (stixDefaultApplier) Domain() string { return "stix" }

func (stixDefaultApplier) ApplyDefaults(cfg *Config) error {
	s := &cfg.Stix
	if s.Repository == "" {
		s.Repository = "https://github.com/mitre/cti.git"
	}
	if s.Branch == "" {
		s.Branch = "master"
	}
	// Only the current bundles are needed. A negative depth fetches full history.
	if s.Depth == 0 {
		s.Depth = 1
	}
	if s.Checkout == "" {
		s.Checkout = filepath.Join(cfg.Paths.Data, ".cti")
	}
	if len(s.Bundles) == 0 {
		s.Bundles = []string{
			"enterprise-attack/enterprise-attack.json",
			"mobile-attack/mobile-attack.json",
			"ics-attack/ics-attack.json",
		}
	}
	if s.SiteURL == "" {
		s.SiteURL = "https://attack.mitre.org/"
	}
	return nil
}

type websiteBuildDefaultApplier struct{}

func (websiteBuildDefaultApplier) Domain() string { return "website_build" }

func (websiteBuildDefaultApplier) ApplyDefaults(cfg *Config) error {
	if !cfg.WebsiteBuild.Configured() {
		cfg.WebsiteBuild.Command = []string{"pelican", cfg.Paths.Content, "-o", cfg.Paths.Output}
	}
	return nil
}

type testsDefaultApplier struct{}

func (testsDefaultApplier) Domain() string { return "tests" }

func (testsDefaultApplier) ApplyDefaults(cfg *Config) error {
	// GitHub Pages published site size limit.
	if cfg.Tests.SizeLimitMB <= 0 {
		cfg.Tests.SizeLimitMB = 1000
	}
	if cfg.Tests.MaxPrintedLines <= 0 {
		cfg.Tests.MaxPrintedLines = 20
	}
	return nil
}

type loggingDefaultApplier struct{}

func (loggingDefaultApplier) Domain() string { return "logging" }

func (loggingDefaultApplier) ApplyDefaults(cfg *Config) error {
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	return nil
}
