package cli

import (
	"strings"
	"testing"

	"github.com/ladderworks/ladderkit/pkg/buildinfo"
)

func TestSetVersion(t *testing.T) {
	SetVersion("1.0.0", "abc123", "2024-01-01")
	defer SetVersion("dev", "none", "unknown")

	if buildinfo.Version != "1.0.0" {
		t.Errorf("version = %q, want %q", buildinfo.Version, "1.0.0")
	}
	if buildinfo.Commit != "abc123" {
		t.Errorf("commit = %q, want %q", buildinfo.Commit, "abc123")
	}
	if buildinfo.Date != "2024-01-01" {
		t.Errorf("date = %q, want %q", buildinfo.Date, "2024-01-01")
	}

	for _, want := range []string{"1.0.0", "abc123", "2024-01-01"} {
		if !strings.Contains(buildinfo.String(), want) {
			t.Errorf("buildinfo.String() = %q, should contain %q", buildinfo.String(), want)
		}
	}
}
