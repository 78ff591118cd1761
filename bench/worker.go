package bench

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
)

// runWorker is the acquire/execute/release loop of one worker. Samples go
// into a worker-local slice no other goroutine touches.
//
// ctx ends only on the safety timeout or process shutdown; stop additionally
// carries the per-run deadline that workers observe between iterations, so
// an in-flight round trip always finishes rather than being truncated into
// a bogus latency sample.
func runWorker(ctx, stop context.Context, id int, pool *Pool, exec Executor, sampler Sampler, iterations int, limiter *rate.Limiter, bar *ProgressBar) WorkerOutcome {
	start := time.Now()
	out := WorkerOutcome{Worker: id}

	for n := 0; iterations <= 0 || n < iterations; n++ {
		if stop.Err() != nil {
			break
		}
		if limiter != nil {
			if limiter.Wait(stop) != nil {
				break
			}
		}
		params := sampler.Next()

		conn, err := pool.Acquire(stop)
		if err != nil {
			if errors.Is(err, ErrPoolExhausted) {
				// Starved on checkout: a distinct failure kind, the
				// worker moves on to its next iteration.
				out.Samples = append(out.Samples, Sample{Err: err, PoolTimeout: true})
				continue
			}
			if errors.Is(err, ErrPoolClosed) {
				out.Err = err
			}
			break
		}
		sample := exec.Execute(ctx, conn, params)
		pool.Release(conn)

		out.Samples = append(out.Samples, sample)
		if bar != nil {
			bar.Increment()
		}
	}

	out.Elapsed = time.Since(start)
	return out
}
