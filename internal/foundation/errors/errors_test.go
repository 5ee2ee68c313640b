package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "attackbuild.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}

		file, exists := err.Context().GetString("file")
		if !exists || file != "attackbuild.yaml" {
			t.Errorf("expected context file=attackbuild.yaml, got %v", file)
		}
	})

	t.Run("Error detection", func(t *testing.T) {
		err := ModuleError("module failed").Build()

		if !IsClassified(err) {
			t.Error("expected error to be classified")
		}
		if !HasCategory(err, CategoryModule) {
			t.Error("expected error to have module category")
		}
		if !err.IsFatal() {
			t.Error("expected module error to be fatal")
		}
	})

	t.Run("Detection through wrapping", func(t *testing.T) {
		inner := GitError("clone failed").Build()
		wrapped := fmt.Errorf("stix_data: %w", inner)

		if GetCategory(wrapped) != CategoryGit {
			t.Errorf("expected git category through %%w, got %s", GetCategory(wrapped))
		}
		if GetCategory(errors.New("plain")) != CategoryInternal {
			t.Error("expected unclassified errors to report internal category")
		}
	})
}

func TestWrapErrorUnwrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := WrapError(cause, CategoryFileSystem, "remove output").
		Path("output").
		Build()

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if err.Error() != "remove output: permission denied" {
		t.Errorf("unexpected Error(): %q", err.Error())
	}
	if err.Detail() != "[filesystem:error] remove output: permission denied" {
		t.Errorf("unexpected Detail(): %q", err.Detail())
	}
}

func TestBuilderModuleAndPath(t *testing.T) {
	err := FileSystemError("write menu").Module("website_build").Path("data/menu.yaml").Build()

	if err.Module() != "website_build" {
		t.Errorf("expected module website_build, got %q", err.Module())
	}
	if path, _ := err.Context().GetString(ContextPath); path != "data/menu.yaml" {
		t.Errorf("expected path context, got %q", path)
	}
	if ModuleError("x").Build().Module() != "" {
		t.Error("expected no module attribution by default")
	}
}

func TestCategoryExitCode(t *testing.T) {
	tests := map[ErrorCategory]int{
		CategoryValidation: ExitUsage,
		CategoryConfig:     ExitConfig,
		CategoryGit:        ExitExternal,
		CategoryNetwork:    ExitExternal,
		CategoryModule:     ExitBuild,
		CategoryFileSystem: ExitBuild,
		CategoryTest:       ExitTestFailed,
		CategoryRuntime:    ExitRuntime,
		CategoryInternal:   ExitInternal,
		ErrorCategory("x"): ExitFailure,
	}
	for category, want := range tests {
		if got := category.ExitCode(); got != want {
			t.Errorf("%s.ExitCode() = %d, want %d", category, got, want)
		}
	}
}

func TestWithContextDoesNotMutateOriginal(t *testing.T) {
	base := ModuleError("boom").Build()
	derived := base.WithContext(ContextModule, "techniques")

	if _, ok := base.Context().Get("module"); ok {
		t.Error("original error context must not change")
	}
	if got := derived.Module(); got != "techniques" {
		t.Errorf("expected derived context module=techniques, got %q", got)
	}
	if !errors.Is(derived, base) {
		t.Error("expected errors with same category and message to match")
	}
}
