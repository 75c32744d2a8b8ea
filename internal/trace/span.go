package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

func nextSeq() uint64 { return seqCounter.Add(1) }

// Span is an open begin/end pair. A span whose scope the tracer filters out
// records nothing, but still hands its parent and unit down to children so a
// finer span that is recorded links to the nearest recorded ancestor.
type Span struct {
	t       Tracer
	on      bool
	id      uint64
	parent  uint64
	unit    string
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
}

func open(t Tracer, scope Scope, name string, parent uint64, unit string) *Span {
	if t == nil {
		t = Nop
	}
	s := &Span{t: t, parent: parent, unit: unit, scope: scope, name: name}
	if !t.Level().ShouldEmit(scope) {
		return s
	}
	s.on = true
	s.id = spanCounter.Add(1)
	s.started = time.Now()
	t.Emit(&Event{
		Time:     s.started,
		Seq:      nextSeq(),
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   s.id,
		ParentID: parent,
		Unit:     unit,
		Name:     name,
	})
	return s
}

// Begin opens a span on t under the span with ID parent.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	return open(t, scope, name, parent, "")
}

// Start opens a span using the tracer and current span from ctx, and returns
// ctx with the new span as current.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	sc := CurrentSpan(ctx)
	s := open(FromContext(ctx), scope, name, sc.SpanID, sc.Unit)
	return s.Context(ctx), s
}

// StartUnit opens the span for one module. Every span below it carries the
// module name.
func StartUnit(ctx context.Context, unit string) (context.Context, *Span) {
	s := open(FromContext(ctx), ScopeUnit, "unit:"+unit, CurrentSpan(ctx).SpanID, unit)
	return s.Context(ctx), s
}

// Child opens a span below s on the same tracer.
func (s *Span) Child(scope Scope, name string) *Span {
	if s == nil {
		return open(Nop, scope, name, 0, "")
	}
	return open(s.t, scope, name, s.ID(), s.unit)
}

// End closes the span and returns how long it was open.
func (s *Span) End(detail string) time.Duration {
	if s == nil || !s.on {
		return 0
	}
	elapsed := time.Since(s.started)
	s.t.Emit(&Event{
		Time:     time.Now(),
		Seq:      nextSeq(),
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Unit:     s.unit,
		Name:     s.name,
		Detail:   detail,
		Elapsed:  elapsed,
		Extra:    s.extra,
	})
	return elapsed
}

// WithExtra attaches key=value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || !s.on {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

// ID is the span's ID, or for a filtered span the nearest recorded ancestor.
func (s *Span) ID() uint64 {
	switch {
	case s == nil:
		return 0
	case s.on:
		return s.id
	default:
		return s.parent
	}
}

// Context returns ctx with s as the current span.
func (s *Span) Context(ctx context.Context) context.Context {
	if s == nil {
		return ctx
	}
	return WithSpanContext(ctx, SpanContext{SpanID: s.ID(), Unit: s.unit})
}

// Point records an instant event under the current span of ctx.
func Point(ctx context.Context, scope Scope, name, detail string) {
	t := FromContext(ctx)
	if !t.Level().ShouldEmit(scope) {
		return
	}
	sc := CurrentSpan(ctx)
	t.Emit(&Event{
		Time:     time.Now(),
		Seq:      nextSeq(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: sc.SpanID,
		Unit:     sc.Unit,
		Name:     name,
		Detail:   detail,
	})
}
