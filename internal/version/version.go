package version

import (
	"strings"

	"github.com/fatih/color"
)

// Version information for the stackc CLI.
// These variables can be overridden at build time via -ldflags.

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)

	// Major, Minor, Patch and Suffix make up the semantic version.
	Major  = "0"
	Minor  = "1"
	Patch  = "0"
	Suffix = "-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Plain returns the uncolored semantic version.
func Plain() string {
	return Major + "." + Minor + "." + Patch + Suffix
}

// Colored returns the semantic version with each component colored. Color is
// dropped when fatih/color decides the output is not a terminal.
func Colored() string {
	return versionMajorColor.Sprint(Major) + "." +
		versionMinorColor.Sprint(Minor) + "." +
		versionPatchColor.Sprint(Patch) + Suffix
}

// Fingerprint identifies the build for artifact caching: the version plus the
// commit when known.
func Fingerprint() string {
	commit := strings.TrimSpace(GitCommit)
	if commit == "" {
		return "stackc " + Plain()
	}
	return "stackc " + Plain() + "+" + commit
}
