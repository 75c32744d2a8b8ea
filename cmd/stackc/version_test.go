package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"stackc/internal/driver"
	"stackc/internal/version"
)

func TestVersionReportCarriesCacheKey(t *testing.T) {
	saved := version.GitCommit
	version.GitCommit = "abc123"
	defer func() { version.GitCommit = saved }()

	var out bytes.Buffer
	writeReportPretty(&out, newBuildReport(version.Plain(), reportFields{hash: true}))
	got := out.String()
	for _, want := range []string{
		"stackc " + version.Plain() + "\n",
		"cache key: stackc " + version.Plain() + "+abc123\n",
		"inputs:    .toml .mp .msgpack\n",
		"commit:    abc123\n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output %q lacks %q", got, want)
		}
	}
	if strings.Contains(got, "message:") || strings.Contains(got, "built:") {
		t.Fatalf("unselected fields printed: %q", got)
	}
}

func TestVersionReportJSON(t *testing.T) {
	var out bytes.Buffer
	if err := writeReportJSON(&out, newBuildReport(version.Plain(), reportFields{date: true})); err != nil {
		t.Fatal(err)
	}
	var r buildReport
	if err := json.Unmarshal(out.Bytes(), &r); err != nil {
		t.Fatal(err)
	}
	if r.CacheKey != version.Fingerprint() || r.CacheSchema != driver.CacheSchema() {
		t.Fatalf("cache fields: %+v", r)
	}
	if r.BuildDate == "" || r.GitCommit != "" {
		t.Fatalf("field selection: %+v", r)
	}
}
