package bench

import "context"

// Executor issues one parameterized query on a pooled handle and reports the
// measured round trip. Implementations open no connections of their own and
// must bracket timing around the request/response only, so queueing delay in
// the pool stays separate from service time. Backend failures come back as
// failure-marked Samples, never as panics or worker aborts: one bad sample
// must not end a worker's run.
type Executor interface {
	Execute(ctx context.Context, conn Conn, params QueryParams) Sample
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(ctx context.Context, conn Conn, params QueryParams) Sample

func (f ExecutorFunc) Execute(ctx context.Context, conn Conn, params QueryParams) Sample {
	return f(ctx, conn, params)
}
