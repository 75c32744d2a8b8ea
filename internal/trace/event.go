package trace

import "time"

// Kind is what happened.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat
)

var kindNames = [...]string{"unknown", "begin", "end", "point", "heartbeat"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[0]
}

// Scope is the pipeline level an event belongs to. Lower values are coarser,
// so a level admits every scope up to its limit.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // the whole build
	ScopeUnit                    // one input module
	ScopeClass                   // metadata and methods of one class
	ScopeFunc                    // one function body
)

var scopeNames = [...]string{"unknown", "driver", "unit", "class", "func"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) {
		return scopeNames[s]
	}
	return scopeNames[0]
}

// Event is one trace record.
type Event struct {
	Time   time.Time
	Seq    uint64
	Kind   Kind
	Scope  Scope
	SpanID uint64
	// ParentID is the nearest recorded ancestor, 0 at the root.
	ParentID uint64
	// Unit names the module being assembled; empty above unit scope.
	Unit   string
	Name   string
	Detail string
	// Elapsed is set on span ends.
	Elapsed time.Duration
	Extra   map[string]string
}

// admits reports whether a tracer at level l keeps ev. Heartbeats pass any
// enabled level.
func admits(l Level, ev *Event) bool {
	if ev.Kind == KindHeartbeat {
		return l > LevelOff
	}
	return l.ShouldEmit(ev.Scope)
}
