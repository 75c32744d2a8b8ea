package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestLevelFiltersScopes(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, false},
		{LevelPhase, ScopeUnit, true},
		{LevelPhase, ScopeClass, false},
		{LevelDetail, ScopeClass, true},
		{LevelDetail, ScopeFunc, false},
		{LevelDebug, ScopeFunc, true},
		{LevelDebug, 0, false},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestParseNames(t *testing.T) {
	if l, err := ParseLevel("DETAIL"); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel(DETAIL) = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("unknown level accepted")
	}
	if m, err := ParseMode("Both"); err != nil || m != ModeBoth || m.String() != "both" {
		t.Fatalf("ParseMode(Both) = %v, %v", m, err)
	}
	if f, err := ParseFormat("json"); err != nil || f != FormatNDJSON {
		t.Fatalf("ParseFormat(json) = %v, %v", f, err)
	}
}

func TestFilteredSpanLinksChildrenToAncestor(t *testing.T) {
	ring := NewRingTracer(16, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	ctx, build := Start(ctx, ScopeDriver, "build")
	_, unit := StartUnit(ctx, "demo")
	fn := unit.Child(ScopeFunc, "func:demoKt.main")
	fn.End("")
	unit.End("")
	build.End("")

	var end Event
	for _, ev := range ring.Snapshot() {
		if ev.Kind == KindSpanEnd && ev.Name == "func:demoKt.main" {
			end = ev
		}
	}
	if end.ParentID != unit.ID() || end.Unit != "demo" {
		t.Fatalf("func end = %+v, want parent %d in unit demo", end, unit.ID())
	}

	detail := NewRingTracer(16, LevelPhase)
	s := Begin(detail, ScopeClass, "class:demo/A", 7)
	if s.ID() != 7 {
		t.Fatalf("filtered span ID = %d, want its parent 7", s.ID())
	}
	if s.Child(ScopeFunc, "func:x").ID() != 7 {
		t.Fatal("child of a filtered span lost the ancestor")
	}
	if s.End("") != 0 || len(detail.Snapshot()) != 0 {
		t.Fatal("filtered span recorded events")
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)
	ctx := WithTracer(context.Background(), tr)

	_, unit := StartUnit(ctx, "demo")
	unit.Child(ScopeFunc, "func:demoKt.main").End("")
	unit.WithExtra("funcs", "1").End("ok")
	if err := tr.Flush(); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "[demo]   → unit:demo") || !strings.Contains(out, "(ok) {funcs=1}") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "func:") {
		t.Fatalf("func scope leaked at detail level:\n%s", out)
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	ctx := WithSpanContext(WithTracer(context.Background(), tr), SpanContext{SpanID: 7, Unit: "demo"})
	Point(ctx, ScopeFunc, "spill", "3 temps")
	if err := tr.Flush(); err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if got["kind"] != "point" || got["scope"] != "func" || got["unit"] != "demo" || got["parent_id"] != float64(7) {
		t.Fatalf("unexpected event: %v", got)
	}
}

func TestRingTracerWraps(t *testing.T) {
	r := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		r.Emit(&Event{Kind: KindPoint, Scope: ScopeFunc, Name: name})
	}
	snap := r.Snapshot()
	if len(snap) != 2 || snap[0].Name != "b" || snap[1].Name != "c" {
		t.Fatalf("snapshot = %+v", snap)
	}
	if r.Dropped() != 1 {
		t.Fatalf("dropped = %d", r.Dropped())
	}
	var buf bytes.Buffer
	if err := r.Dump(&buf, FormatText); err != nil || strings.Count(buf.String(), "\n") != 2 {
		t.Fatalf("dump = %q, %v", buf.String(), err)
	}
}

func TestNewBothExposesRing(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf, RingSize: 8})
	if err != nil {
		t.Fatal(err)
	}
	Begin(tr, ScopeDriver, "build", 0).End("")
	r := Ring(tr)
	if r == nil || len(r.Snapshot()) != 2 {
		t.Fatalf("ring missing or wrong size")
	}
	if buf.Len() == 0 {
		t.Fatal("stream received nothing")
	}
	if tr, _ := New(Config{Level: LevelOff}); tr != Nop {
		t.Fatal("off level must give Nop")
	}
}

func TestHeartbeatReportsStatus(t *testing.T) {
	r := NewRingTracer(64, LevelPhase)
	var calls atomic.Int32
	hb := StartHeartbeat(r, time.Millisecond, func() string {
		calls.Add(1)
		return "1/2 units done"
	})
	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	hb.Stop()
	hb.Stop()

	snap := r.Snapshot()
	if len(snap) == 0 || snap[0].Kind != KindHeartbeat || !strings.HasSuffix(snap[0].Detail, "1/2 units done") {
		t.Fatalf("heartbeats = %+v", snap)
	}
	if StartHeartbeat(Nop, time.Millisecond, nil) != nil {
		t.Fatal("heartbeat started on a disabled tracer")
	}
	var none *Heartbeat
	none.Stop()
}

func TestContextDefaultsToNop(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatal("expected Nop")
	}
	if (CurrentSpan(context.Background()) != SpanContext{}) {
		t.Fatal("expected zero span context")
	}
	tr := NewRingTracer(4, LevelDebug)
	if FromContext(WithTracer(context.Background(), tr)) != Tracer(tr) {
		t.Fatal("tracer not propagated")
	}
}
