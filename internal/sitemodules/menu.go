package sitemodules

import (
	"context"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/attackbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/attackbuild/internal/logfields"
	"git.home.luguber.info/inful/attackbuild/internal/modules"
)

// MenuFile is the name of the navigation file written into the data directory.
const MenuFile = "menu.yaml"

// MenuItem is one navigation entry.
type MenuItem struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Priority int    `yaml:"priority"`
}

// MenuItems converts menu descriptors into navigation entries.
func MenuItems(menu []modules.Descriptor) []MenuItem {
	items := make([]MenuItem, 0, len(menu))
	for _, d := range menu {
		items = append(items, MenuItem{Name: d.Name, URL: d.MenuURL, Priority: d.Priority})
	}
	return items
}

// WriteMenu writes the navigation entries to path as YAML.
func WriteMenu(path string, items []MenuItem) error {
	data, err := yaml.Marshal(items)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to encode menu").Build()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create data directory").
			Path(filepath.Dir(path)).
			Build()
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write menu").
			Path(path).
			Build()
	}
	return nil
}

// websiteBuild exports the menu left after module filtering and runs the
// site builder.
func (b *binder) websiteBuild(ctx context.Context) error {
	path := filepath.Join(b.deps.Config.Paths.Data, MenuFile)
	items := MenuItems(b.reg.Menu())
	if err := WriteMenu(path, items); err != nil {
		return err
	}
	b.deps.Logger.Info("Wrote site menu", logfields.Path(path), logfields.Count(len(items)))

	cmd := b.deps.Config.WebsiteBuild
	if !cmd.Configured() {
		b.deps.Logger.Warn("No website build command configured, skipping", logfields.Module("website_build"))
		return nil
	}
	return b.executor.Run(ctx, "website_build", cmd)
}
