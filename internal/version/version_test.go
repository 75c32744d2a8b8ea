package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestPlainVersion(t *testing.T) {
	if got := Plain(); got != "0.1.0-dev" {
		t.Fatalf("Plain() = %q", got)
	}
}

func TestColoredMatchesPlainWithoutColor(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = orig }()

	if Colored() != Plain() {
		t.Fatalf("Colored() = %q, want %q", Colored(), Plain())
	}
}

func TestFingerprint(t *testing.T) {
	orig := GitCommit
	defer func() { GitCommit = orig }()

	tests := []struct {
		commit string
		want   string
	}{
		{"", "stackc 0.1.0-dev"},
		{"  ", "stackc 0.1.0-dev"},
		{"abc123", "stackc 0.1.0-dev+abc123"},
	}
	for _, tt := range tests {
		GitCommit = tt.commit
		if got := Fingerprint(); got != tt.want {
			t.Fatalf("Fingerprint() with commit %q = %q, want %q", tt.commit, got, tt.want)
		}
	}
}

func TestVersionCanBeOverridden(t *testing.T) {
	origMinor, origSuffix := Minor, Suffix
	defer func() { Minor, Suffix = origMinor, origSuffix }()

	Minor, Suffix = "4", ""
	if got := Plain(); got != "0.4.0" {
		t.Fatalf("Plain() = %q, want 0.4.0", got)
	}
}
