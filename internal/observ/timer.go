package observ

import (
	"fmt"
	"strings"
	"time"
)

// PhaseReport is one finished step of a unit build.
type PhaseReport struct {
	Name       string  `msgpack:"name"`
	DurationMS float64 `msgpack:"ms"`
	Note       string  `msgpack:"note,omitempty"`
}

// Report lists the phases of one unit build in the order they started.
type Report struct {
	TotalMS float64       `msgpack:"total_ms"`
	Phases  []PhaseReport `msgpack:"phases"`
}

// Timer times the phases of one unit build. Not safe for concurrent use;
// each unit owns its own.
type Timer struct {
	names   []string
	started []time.Time
	elapsed []time.Duration
	notes   []string
}

func NewTimer() *Timer { return &Timer{} }

// Begin starts a phase and returns the handle End takes.
func (t *Timer) Begin(name string) int {
	t.names = append(t.names, name)
	t.started = append(t.started, time.Now())
	t.elapsed = append(t.elapsed, 0)
	t.notes = append(t.notes, "")
	return len(t.names) - 1
}

// End stops phase i and attaches note. Unknown handles are ignored.
func (t *Timer) End(i int, note string) {
	if i < 0 || i >= len(t.names) {
		return
	}
	t.elapsed[i] = time.Since(t.started[i])
	t.notes[i] = note
}

// Report snapshots the phases. TotalMS is their sum, not wall time.
func (t *Timer) Report() Report {
	var r Report
	if t == nil {
		return r
	}
	var total time.Duration
	for i, name := range t.names {
		total += t.elapsed[i]
		r.Phases = append(r.Phases, PhaseReport{Name: name, DurationMS: millis(t.elapsed[i]), Note: t.notes[i]})
	}
	r.TotalMS = millis(total)
	return r
}

// Summary renders r one phase per line, each prefixed.
func (r Report) Summary(prefix string) string {
	var sb strings.Builder
	line := func(name string, ms float64, note string) {
		fmt.Fprintf(&sb, "%s%-10s %7.2f ms", prefix, name, ms)
		if note != "" {
			fmt.Fprintf(&sb, "  // %s", note)
		}
		sb.WriteByte('\n')
	}
	for _, p := range r.Phases {
		line(p.Name, p.DurationMS, p.Note)
	}
	line("total", r.TotalMS, "")
	return sb.String()
}

func millis(d time.Duration) float64 {
	return d.Seconds() * 1000
}
