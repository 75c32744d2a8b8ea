package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"stackc/internal/driver"
)

func TestApplyEventTracksStatus(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("build", []string{"a.toml", "b.toml"}, events).(*progressModel)

	steps := []struct {
		ev   driver.Event
		want string
	}{
		{driver.Event{Unit: "a.toml", Stage: driver.StageLoad, Status: driver.StatusWorking}, "loading"},
		{driver.Event{Unit: "a.toml", Stage: driver.StageAssemble, Status: driver.StatusWorking}, "assembling"},
		{driver.Event{Unit: "a.toml", Stage: driver.StageWrite, Status: driver.StatusDone}, "done"},
		{driver.Event{Unit: "unknown", Status: driver.StatusError}, "done"},
	}
	for _, s := range steps {
		m.applyEvent(s.ev)
		if got := m.rows[0].label(); got != s.want {
			t.Fatalf("after %+v: status %q, want %q", s.ev, got, s.want)
		}
	}
	if got := m.percent(); got != 0.5 {
		t.Fatalf("percent = %v, want 0.5", got)
	}

	m.applyEvent(driver.Event{Unit: "b.toml", Stage: driver.StageAssemble, Status: driver.StatusError, Err: errors.New("boom\nmore")})
	if got := m.summary(); got != "1 built, 0 cached, 1 failed" {
		t.Fatalf("summary = %q", got)
	}
	view := m.View()
	if !strings.Contains(view, "boom") || strings.Contains(view, "more") {
		t.Fatalf("view does not show the first error line:\n%s", view)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"units/very/long/path.toml", 10, "units/v..."},
		{"abcdef", 3, "abc"},
		{"漢字漢字", 5, "漢..."},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.width)
		if got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
		if runewidth.StringWidth(got) > tt.width {
			t.Fatalf("truncate(%q, %d) is %d cells wide", tt.in, tt.width, runewidth.StringWidth(got))
		}
	}
}
