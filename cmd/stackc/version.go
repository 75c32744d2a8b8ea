package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"stackc/internal/driver"
	"stackc/internal/version"
)

// inputExtensions are the unit file suffixes ir.FormatOf accepts.
var inputExtensions = []string{".toml", ".mp", ".msgpack"}

// buildReport is everything `stackc version` can print. Optional git fields
// are empty when the binary was built without ldflags.
type buildReport struct {
	Tool        string   `json:"tool"`
	Version     string   `json:"version"`
	CacheKey    string   `json:"cache_key"`
	CacheSchema uint16   `json:"cache_schema"`
	Inputs      []string `json:"inputs"`
	GitCommit   string   `json:"git_commit,omitempty"`
	GitMessage  string   `json:"git_message,omitempty"`
	BuildDate   string   `json:"build_date,omitempty"`
}

type reportFields struct {
	hash, message, date bool
}

var (
	versionFormat string
	versionFields reportFields
	versionFull   bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionFields.hash, "hash", false, "include git commit hash")
	versionCmd.Flags().BoolVar(&versionFields.message, "message", false, "include git commit message")
	versionCmd.Flags().BoolVar(&versionFields.date, "date", false, "include build timestamp")
	versionCmd.Flags().BoolVar(&versionFull, "full", false, "show every recorded bit of build metadata")
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show stackc build and artifact cache information",
	RunE: func(cmd *cobra.Command, args []string) error {
		fields := versionFields
		if versionFull {
			fields = reportFields{hash: true, message: true, date: true}
		}
		switch strings.ToLower(versionFormat) {
		case "pretty":
			writeReportPretty(cmd.OutOrStdout(), newBuildReport(version.Colored(), fields))
			return nil
		case "json":
			return writeReportJSON(cmd.OutOrStdout(), newBuildReport(version.Plain(), fields))
		default:
			return &flagError{flag: "--format", value: versionFormat, want: "pretty|json"}
		}
	},
}

// newBuildReport fills the always-present fields and the git fields fields
// selects. A selected field the build did not record reads "unknown".
func newBuildReport(semver string, fields reportFields) buildReport {
	r := buildReport{
		Tool:        "stackc",
		Version:     semver,
		CacheKey:    version.Fingerprint(),
		CacheSchema: driver.CacheSchema(),
		Inputs:      inputExtensions,
	}
	pick := func(on bool, s string) string {
		if !on {
			return ""
		}
		if s = strings.TrimSpace(s); s == "" {
			return "unknown"
		}
		return s
	}
	r.GitCommit = pick(fields.hash, version.GitCommit)
	r.GitMessage = pick(fields.message, version.GitMessage)
	r.BuildDate = pick(fields.date, version.BuildDate)
	return r
}

func writeReportPretty(out io.Writer, r buildReport) {
	fmt.Fprintf(out, "%s %s\n", r.Tool, r.Version)
	rows := [][2]string{
		{"cache key", r.CacheKey},
		{"schema", fmt.Sprintf("v%d", r.CacheSchema)},
		{"inputs", strings.Join(r.Inputs, " ")},
		{"commit", r.GitCommit},
		{"message", r.GitMessage},
		{"built", r.BuildDate},
	}
	for _, row := range rows {
		if row[1] != "" {
			fmt.Fprintf(out, "%-10s %s\n", row[0]+":", row[1])
		}
	}
}

func writeReportJSON(out io.Writer, r buildReport) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
