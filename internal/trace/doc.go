// Package trace records what the assembler pipeline is doing.
//
// A build opens a driver span, each module a unit span, and inside a unit
// the assembler opens a span per class and per function. Spans started from
// a context link to the span already stored there and inherit its unit:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.StartUnit(ctx, "demo")
//	defer span.End("")
//	fn := span.Child(trace.ScopeFunc, "func:demoKt.main")
//
// Levels pick the finest scope kept: phase keeps driver and unit spans,
// detail adds classes and debug adds functions. Events go to a stream (text
// or NDJSON), to an in-memory ring dumped at exit, or to both.
package trace
