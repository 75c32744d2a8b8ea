package observ

import (
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	load := tm.Begin("load")
	tm.End(load, "")
	asm := tm.Begin("assemble")
	tm.End(asm, "3 funcs")
	tm.End(42, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 || r.Phases[0].Name != "load" || r.Phases[1].Note != "3 funcs" {
		t.Fatalf("report = %+v", r)
	}
	sum := r.Phases[0].DurationMS + r.Phases[1].DurationMS
	if d := r.TotalMS - sum; d > 1e-6 || d < -1e-6 {
		t.Fatalf("total %v != sum %v", r.TotalMS, sum)
	}

	out := r.Summary("  ")
	for _, want := range []string{"  load ", "  assemble ", "// 3 funcs", "  total "} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary lacks %q:\n%s", want, out)
		}
	}
}

func TestEmptyTimer(t *testing.T) {
	var tm *Timer
	if r := tm.Report(); len(r.Phases) != 0 || r.TotalMS != 0 {
		t.Fatalf("nil timer report = %+v", r)
	}
}
