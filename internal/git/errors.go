package git

import (
	"strings"

	"git.home.luguber.info/inful/attackbuild/internal/foundation/errors"
)

// ClassifyGitError translates go-git errors into ClassifiedErrors.
func ClassifyGitError(err error, op string, url string) error {
	if err == nil {
		return nil
	}

	// Already classified
	if _, ok := errors.AsClassified(err); ok {
		return err
	}

	l := strings.ToLower(err.Error())

	category := errors.CategoryGit
	switch {
	case strings.Contains(l, "remote hung up") || strings.Contains(l, "connection reset") ||
		strings.Contains(l, "connection refused") || strings.Contains(l, "timeout") ||
		strings.Contains(l, "no route to host") || strings.Contains(l, "proxyconnect"):
		category = errors.CategoryNetwork
	case strings.Contains(l, "unsupported protocol") || strings.Contains(l, "protocol not supported"):
		category = errors.CategoryConfig
	}

	return errors.WrapError(err, category, "git "+op+" failed").
		WithContext("op", op).
		WithContext("url", url).
		Build()
}
