// Package errors provides the classified error primitives used across attackbuild.
//
// Errors carry a category (config, validation, module, git, ...), a severity
// and free-form context. The CLI adapter maps categories to process exit codes.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryGit, "clone failed").
//		WithContext("url", repoURL).
//		Build()
package errors
