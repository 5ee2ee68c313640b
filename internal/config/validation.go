package config

import (
	"fmt"
	"path/filepath"
	"sort"

	"git.home.luguber.info/inful/attackbuild/internal/catalog"
)

// ValidateConfig validates a configuration after defaults have been applied.
func ValidateConfig(cfg *Config) error {
	v := &configurationValidator{config: cfg}
	return v.validate()
}

type configurationValidator struct {
	config *Config
}

func (cv *configurationValidator) validate() error {
	if err := cv.validatePaths(); err != nil {
		return err
	}
	if err := cv.validateGenerators(); err != nil {
		return err
	}
	return cv.validateStix()
}

func (cv *configurationValidator) validatePaths() error {
	p := cv.config.Paths
	for name, dir := range map[string]string{"output": p.Output, "data": p.Data, "reports": p.Reports} {
		if dir == p.Content {
			return fmt.Errorf("paths.%s must differ from paths.content (%s)", name, p.Content)
		}
	}
	return nil
}

func (cv *configurationValidator) validateGenerators() error {
	names := make([]string, 0, len(cv.config.Generators))
	for name := range cv.config.Generators {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !catalog.IsGenerator(name) {
			return fmt.Errorf("generators.%s: not a page generation module (valid: %v)", name, catalog.GeneratorModules)
		}
		if !cv.config.Generators[name].Configured() {
			return fmt.Errorf("generators.%s: command is required", name)
		}
	}
	return nil
}

func (cv *configurationValidator) validateStix() error {
	seen := make(map[string]string, len(cv.config.Stix.Bundles))
	for _, b := range cv.config.Stix.Bundles {
		if b == "" {
			return fmt.Errorf("stix.bundles: empty bundle path")
		}
		name := filepath.Base(b)
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("stix.bundles: %s and %s publish to the same file %s", prev, b, name)
		}
		seen[name] = b
	}
	return nil
}
