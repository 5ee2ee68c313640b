package sitetests

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/attackbuild/internal/foundation/errors"
)

const megabyte = 1024 * 1024

// DirSize returns the total size of regular files under root.
func DirSize(root string) (int64, error) {
	var total int64
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	return total, err
}

// outputMissing records a failure on res when the output directory itself
// does not exist. Errors below the root are left to the walk.
func (s *Suite) outputMissing(res *Result) bool {
	if _, err := os.Stat(s.paths.Output); !os.IsNotExist(err) {
		return false
	}
	res.Lines = []string{fmt.Sprintf("output directory %s does not exist", s.paths.Output)}
	return true
}

func (s *Suite) checkSize() (Result, error) {
	res := Result{Name: "size"}
	if s.outputMissing(&res) {
		return res, nil
	}
	size, err := DirSize(s.paths.Output)
	if err != nil {
		return res, errors.WrapError(err, errors.CategoryFileSystem, "failed to measure output size").
			Path(s.paths.Output).
			Build()
	}

	limit := s.cfg.SizeLimitMB * megabyte
	summary := fmt.Sprintf("output size %.1f MB (limit %d MB)", float64(size)/megabyte, s.cfg.SizeLimitMB)
	if size > limit {
		res.Lines = []string{summary + ": exceeds limit"}
		return res, nil
	}
	res.Passed = true
	res.Lines = []string{summary}
	return res, nil
}
