package driver

import "time"

// Stage is a step of building one unit.
type Stage string

const (
	// StageLoad reads and decodes the unit file.
	StageLoad Stage = "load"
	// StageAssemble runs the module assembler.
	StageAssemble Stage = "assemble"
	// StageWrite writes the artifact and listing.
	StageWrite Stage = "write"
)

// Status is the state of a unit within a stage.
type Status string

const (
	// StatusQueued indicates the unit is waiting for a worker.
	StatusQueued Status = "queued"
	// StatusWorking indicates the unit is being processed.
	StatusWorking Status = "working"
	// StatusCached indicates the artifact came from the cache.
	StatusCached Status = "cached"
	// StatusDone indicates the unit was built.
	StatusDone Status = "done"
	// StatusError indicates the unit failed.
	StatusError Status = "error"
)

// Final reports whether no further events follow s for the unit.
func (s Status) Final() bool {
	return s == StatusDone || s == StatusCached || s == StatusError
}

// Event reports progress for a unit (or for the whole build when Unit is empty).
type Event struct {
	Unit    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent use since units are built in parallel.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events to a channel.
type ChannelSink chan<- Event

// OnEvent implements ProgressSink.
func (s ChannelSink) OnEvent(ev Event) {
	s <- ev
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

// OnEvent implements ProgressSink.
func (f SinkFunc) OnEvent(ev Event) {
	f(ev)
}

func notify(sink ProgressSink, ev Event) {
	if sink != nil {
		sink.OnEvent(ev)
	}
}
