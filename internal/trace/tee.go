package trace

import "errors"

// Tee duplicates every event to each of its sinks. Sinks apply their own
// level filter; the tee's level only answers Level and Enabled.
type Tee struct {
	level Level
	sinks []Tracer
}

func NewTee(level Level, sinks ...Tracer) *Tee {
	return &Tee{level: level, sinks: sinks}
}

func (t *Tee) Emit(ev *Event) {
	// Stamp once so every sink sees the same sequence number.
	if ev.Seq == 0 {
		ev.Seq = nextSeq()
	}
	for _, s := range t.sinks {
		s.Emit(ev)
	}
}

func (t *Tee) Flush() error {
	errs := make([]error, 0, len(t.sinks))
	for _, s := range t.sinks {
		errs = append(errs, s.Flush())
	}
	return errors.Join(errs...)
}

func (t *Tee) Close() error {
	errs := make([]error, 0, len(t.sinks))
	for _, s := range t.sinks {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

func (t *Tee) Level() Level  { return t.level }
func (t *Tee) Enabled() bool { return t.level > LevelOff }
