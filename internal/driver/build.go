package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"stackc/internal/codegen"
	"stackc/internal/ir"
	"stackc/internal/layout"
	"stackc/internal/observ"
	"stackc/internal/trace"
)

// Options configures a multi-unit build.
type Options struct {
	// OutDir receives <unit>.mp and, with Listing, <unit>.lst. Empty keeps
	// artifacts in memory only.
	OutDir  string
	Listing bool
	// Jobs bounds the number of units assembled at once; <= 0 means GOMAXPROCS.
	Jobs int
	// Cache is consulted before assembling; nil disables caching.
	Cache *DiskCache
	// Target is passed to the assembler and is part of the cache key.
	Target layout.Target
	// Fingerprint is mixed into the cache key (typically the tool version).
	Fingerprint string
	Progress    ProgressSink
	// Heartbeat enables periodic liveness trace events.
	Heartbeat time.Duration
}

// UnitResult is the outcome of building one unit.
type UnitResult struct {
	Path     string
	Name     string
	Key      Digest
	Artifact *codegen.Artifact
	Output   string
	Listing  string
	Cached   bool
	Err      error
	Elapsed  time.Duration
	Timings  observ.Report
}

// Build assembles every unit in paths in parallel. A failing unit does not
// stop the others; per-unit errors are recorded in the results and joined
// into the returned error. Results are in input order.
func Build(ctx context.Context, paths []string, opts Options) ([]UnitResult, error) {
	if opts.Target == (layout.Target{}) {
		opts.Target = layout.Linear32()
	}
	if err := opts.Target.Validate(); err != nil {
		return nil, err
	}
	if err := checkOutputNames(paths); err != nil {
		return nil, err
	}
	if opts.OutDir != "" {
		if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
			return nil, err
		}
	}

	ctx, span := trace.Start(ctx, trace.ScopeDriver, "build")
	var finished atomic.Int64
	hb := trace.StartHeartbeat(trace.FromContext(ctx), opts.Heartbeat, func() string {
		return fmt.Sprintf("%d/%d units done", finished.Load(), len(paths))
	})
	defer hb.Stop()

	for _, p := range paths {
		notify(opts.Progress, Event{Unit: p, Stage: StageLoad, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]UnitResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(paths))))
	fingerprint := opts.fingerprint()
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = buildUnit(gctx, path, fingerprint, &opts)
			finished.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.End(err.Error())
		return results, err
	}

	var errs []error
	cached := 0
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
		if r.Cached {
			cached++
		}
	}
	err := errors.Join(errs...)
	span.WithExtra("units", strconv.Itoa(len(paths))).
		WithExtra("cached", strconv.Itoa(cached)).
		WithExtra("failed", strconv.Itoa(len(errs)))
	if err != nil {
		span.End("failed")
	} else {
		span.End("")
	}
	return results, err
}

func (o *Options) fingerprint() string {
	t := o.Target
	return fmt.Sprintf("%s|%s/%d/%d/%d", o.Fingerprint, t.Name, t.RefSize, t.RefAlign, t.HeaderSize)
}

func buildUnit(ctx context.Context, path, fingerprint string, opts *Options) (res UnitResult) {
	start := time.Now()
	timer := observ.NewTimer()
	res.Path = path
	stage := StageLoad
	defer func() {
		res.Elapsed = time.Since(start)
		res.Timings = timer.Report()
		status := StatusDone
		switch {
		case res.Err != nil:
			status = StatusError
		case res.Cached:
			status = StatusCached
		}
		notify(opts.Progress, Event{Unit: path, Stage: stage, Status: status, Err: res.Err, Elapsed: res.Elapsed})
	}()

	notify(opts.Progress, Event{Unit: path, Stage: stage, Status: StatusWorking})
	phase := timer.Begin("load")
	m, data, err := ir.Load(path)
	timer.End(phase, "")
	if err != nil {
		res.Err = err
		return res
	}
	res.Name = m.Name
	res.Key = UnitKey(data, fingerprint)

	phase = timer.Begin("cache")
	art, hit, err := opts.Cache.Get(res.Key)
	if err != nil {
		// A corrupt entry is rebuilt and overwritten.
		trace.Point(ctx, trace.ScopeUnit, "cache:"+m.Name, err.Error())
	}
	if hit {
		timer.End(phase, "hit")
		res.Cached = true
	} else {
		timer.End(phase, "miss")
		stage = StageAssemble
		notify(opts.Progress, Event{Unit: path, Stage: stage, Status: StatusWorking})
		phase = timer.Begin("assemble")
		art, err = codegen.Assemble(ctx, m, codegen.Options{Target: opts.Target})
		if err != nil {
			timer.End(phase, "failed")
			res.Err = fmt.Errorf("%s: %w", path, err)
			return res
		}
		timer.End(phase, fmt.Sprintf("%d funcs", len(art.Functions)))
		art.Digest = res.Key.String()
		if err := opts.Cache.Put(res.Key, art); err != nil {
			trace.Point(ctx, trace.ScopeUnit, "cache:"+m.Name, err.Error())
		}
	}
	res.Artifact = art

	if opts.OutDir == "" {
		return res
	}
	stage = StageWrite
	notify(opts.Progress, Event{Unit: path, Stage: stage, Status: StatusWorking})
	phase = timer.Begin("write")
	defer timer.End(phase, "")
	base := filepath.Join(opts.OutDir, unitBase(path))
	res.Output = base + ".mp"
	if err := WriteArtifact(res.Output, art); err != nil {
		res.Err = err
		return res
	}
	if opts.Listing {
		res.Listing = base + ".lst"
		if err := WriteListing(res.Listing, art); err != nil {
			res.Err = err
		}
	}
	return res
}

func unitBase(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// checkOutputNames rejects inputs that would overwrite each other's artifacts.
func checkOutputNames(paths []string) error {
	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		b := unitBase(p)
		if prev, ok := seen[b]; ok {
			return fmt.Errorf("units %s and %s both write %s.mp", prev, p, b)
		}
		seen[b] = p
	}
	return nil
}
