package version

import (
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if BuildTime == "" || GitCommit == "" {
		t.Error("build info should be initialized")
	}
}

func TestString(t *testing.T) {
	got := String()
	if !strings.HasPrefix(got, "attackbuild "+Version) {
		t.Errorf("unexpected version line %q", got)
	}
	if !strings.Contains(got, GitCommit) {
		t.Errorf("version line %q should include the commit", got)
	}
}
