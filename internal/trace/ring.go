package trace

import (
	"bufio"
	"io"
	"sync"
)

const defaultRingSize = 4096

// RingTracer keeps the most recent events in memory so they can be dumped
// after a failure.
type RingTracer struct {
	mu    sync.Mutex
	buf   []Event
	total uint64
	level Level
}

// NewRingTracer returns a ring holding up to size events; size <= 0 means 4096.
func NewRingTracer(size int, level Level) *RingTracer {
	if size <= 0 {
		size = defaultRingSize
	}
	return &RingTracer{buf: make([]Event, size), level: level}
}

func (r *RingTracer) Emit(ev *Event) {
	if !admits(r.level, ev) {
		return
	}
	stored := *ev
	if stored.Seq == 0 {
		stored.Seq = nextSeq()
	}
	r.mu.Lock()
	r.buf[r.total%uint64(len(r.buf))] = stored
	r.total++
	r.mu.Unlock()
}

// Dropped is the number of events overwritten since the ring was created.
func (r *RingTracer) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := uint64(len(r.buf)); r.total > n {
		return r.total - n
	}
	return 0
}

// Snapshot copies the retained events, oldest first.
func (r *RingTracer) Snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	size := uint64(len(r.buf))
	first := uint64(0)
	if r.total > size {
		first = r.total - size
	}
	out := make([]Event, 0, r.total-first)
	for i := first; i < r.total; i++ {
		out = append(out, r.buf[i%size])
	}
	return out
}

// Dump writes the retained events to w.
func (r *RingTracer) Dump(w io.Writer, format Format) error {
	bw := bufio.NewWriter(w)
	events := r.Snapshot()
	for i := range events {
		if _, err := bw.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (r *RingTracer) Flush() error  { return nil }
func (r *RingTracer) Close() error  { return nil }
func (r *RingTracer) Level() Level  { return r.level }
func (r *RingTracer) Enabled() bool { return r.level > LevelOff }
