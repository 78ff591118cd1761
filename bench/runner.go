package bench

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Runner drives one cohort of workers at a fixed concurrency level against a
// shared pool and aggregates their outcomes.
type Runner struct {
	pool     *Pool
	exec     Executor
	samplers SamplerFactory
	log      *zap.Logger

	// Warmup queries executed unmeasured before the timed phase.
	Warmup int
	// RateLimit caps total queries/sec across the cohort. 0 = uncapped.
	RateLimit int
	// SafetyTimeout bounds how long the runner waits for workers to join
	// before reporting partial results as degraded. 0 = wait forever.
	SafetyTimeout time.Duration
	// ShowProgress renders a progress bar for count-based runs.
	ShowProgress bool
}

func NewRunner(pool *Pool, exec Executor, samplers SamplerFactory, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{pool: pool, exec: exec, samplers: samplers, log: log}
}

// Run executes one benchmark: launches exactly concurrency workers, joins
// them, and reduces the merged samples. Total wall time is the runner's
// outer clock span, not the sum of per-worker durations. A worker that
// fails entirely contributes zero samples; it never aborts the cohort.
func (r *Runner) Run(ctx context.Context, label string, concurrency int, stop StopCondition) (BenchStats, error) {
	if concurrency < 1 {
		return BenchStats{}, fmt.Errorf("bench: concurrency %d is not positive", concurrency)
	}
	if concurrency > r.pool.Size() {
		return BenchStats{}, fmt.Errorf("bench: concurrency %d exceeds pool size %d, workers would starve", concurrency, r.pool.Size())
	}
	if (stop.Iterations > 0) == (stop.Duration > 0) {
		return BenchStats{}, errors.New("bench: stop condition needs exactly one of iterations or duration")
	}

	r.warmup(ctx)

	var limiter *rate.Limiter
	if r.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.RateLimit), 1)
	}
	var bar *ProgressBar
	if r.ShowProgress && stop.Iterations > 0 {
		bar = NewProgressBar(int64(stop.Iterations * concurrency)).SetCaption(label)
	}

	// runCtx ends only on the safety cut; stopCtx adds the run deadline
	// workers poll between iterations. The wall clock starts before the
	// deadline so the reported span always covers it.
	start := time.Now()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stopCtx := runCtx
	if stop.Duration > 0 {
		var stopCancel context.CancelFunc
		stopCtx, stopCancel = context.WithTimeout(runCtx, stop.Duration)
		defer stopCancel()
	}

	r.log.Info("starting workers",
		zap.String("label", label),
		zap.Int("concurrency", concurrency),
		zap.Int("iterations", stop.Iterations),
		zap.Duration("duration", stop.Duration))

	outcomes := make(chan WorkerOutcome, concurrency)
	for w := 0; w < concurrency; w++ {
		go func(id int) {
			outcomes <- runWorker(runCtx, stopCtx, id, r.pool, r.exec, r.samplers(id), stop.Iterations, limiter, bar)
		}(w)
	}

	collected, degraded := r.join(outcomes, concurrency, cancel)
	wall := time.Since(start)
	if bar != nil {
		bar.Finish()
	}

	var samples []Sample
	for _, o := range collected {
		if o.Err != nil {
			degraded = true
			r.log.Warn("worker ended with fault",
				zap.Int("worker", o.Worker),
				zap.Int("samples", len(o.Samples)),
				zap.Error(o.Err))
		}
		samples = append(samples, o.Samples...)
	}

	stats := Aggregate(label, concurrency, samples, wall)
	stats.RunID = uuid.NewString()
	stats.Degraded = stats.Degraded || degraded
	if stats.Failed > 0 {
		r.log.Warn("run had failed samples",
			zap.Int("failed", stats.Failed),
			zap.Int("pool_timeouts", stats.PoolTimeouts))
	}
	return stats, nil
}

// join waits for every worker outcome, or cuts the run short once the safety
// timeout fires. After the cut, workers get a short grace period to land;
// anything still missing is reported as partial, degraded results.
func (r *Runner) join(outcomes <-chan WorkerOutcome, concurrency int, cancel context.CancelFunc) ([]WorkerOutcome, bool) {
	var safety <-chan time.Time
	if r.SafetyTimeout > 0 {
		t := time.NewTimer(r.SafetyTimeout)
		defer t.Stop()
		safety = t.C
	}

	collected := make([]WorkerOutcome, 0, concurrency)
	for len(collected) < concurrency {
		select {
		case o := <-outcomes:
			collected = append(collected, o)
		case <-safety:
			r.log.Warn("safety timeout elapsed, reporting partial results",
				zap.Duration("timeout", r.SafetyTimeout),
				zap.Int("joined", len(collected)),
				zap.Int("expected", concurrency))
			cancel()
			grace := time.NewTimer(5 * time.Second)
			defer grace.Stop()
			for len(collected) < concurrency {
				select {
				case o := <-outcomes:
					collected = append(collected, o)
				case <-grace.C:
					return collected, true
				}
			}
			return collected, true
		}
	}
	return collected, false
}

// warmup runs unmeasured queries on a single handle so the first measured
// samples do not pay connection or cache warmup costs.
func (r *Runner) warmup(ctx context.Context) {
	if r.Warmup <= 0 {
		return
	}
	r.log.Info("warming up", zap.Int("queries", r.Warmup))
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		r.log.Warn("warmup skipped", zap.Error(err))
		return
	}
	defer r.pool.Release(conn)
	sampler := r.samplers(-1)
	for i := 0; i < r.Warmup; i++ {
		r.exec.Execute(ctx, conn, sampler.Next())
	}
}
