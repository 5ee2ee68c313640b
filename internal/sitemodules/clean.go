package sitemodules

import (
	"context"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/attackbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/attackbuild/internal/logfields"
)

// clean removes generated directories. The content directory is never touched.
func (b *binder) clean(_ context.Context) error {
	paths := b.deps.Config.Paths
	content := filepath.Clean(paths.Content)
	for _, dir := range []string{paths.Output, paths.Data, paths.Reports} {
		if dir == "" || filepath.Clean(dir) == "." || filepath.Clean(dir) == content {
			b.deps.Logger.Warn("Refusing to remove directory", logfields.Path(dir))
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to remove directory").
				Path(dir).
				Build()
		}
		b.deps.Logger.Info("Removed directory", logfields.Path(dir))
	}
	return nil
}
