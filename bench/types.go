package bench

import "time"

// ConnConfig identifies one database endpoint.
type ConnConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// QueryParams is the input to one query invocation: a partition key (a map
// tile, or a row id for write workloads) and a version upper bound or payload
// seed. Never mutated after construction.
type QueryParams struct {
	Key     string
	Version int64
}

// Sample is the measured outcome of one query invocation. Latency brackets
// the request/response round trip only; pool queueing time is not included.
type Sample struct {
	Latency     time.Duration
	Rows        int64
	Err         error
	PoolTimeout bool // acquisition timed out; counted apart from query errors
}

func (s Sample) Failed() bool { return s.Err != nil }

// WorkerOutcome is the ordered sample sequence one worker produced plus its
// own wall-clock span. Owned exclusively by the worker until the runner
// collects it, so no locking happens during collection.
type WorkerOutcome struct {
	Worker  int
	Samples []Sample
	Elapsed time.Duration
	Err     error // worker-level fault; the outcome may be short or empty
}

// StopCondition tells workers when to stop: a fixed iteration count per
// worker, or a shared deadline every worker observes between iterations.
// Exactly one of the two must be set.
type StopCondition struct {
	Iterations int
	Duration   time.Duration
}

// BenchStats is the immutable summary of one run at one concurrency level.
type BenchStats struct {
	Label       string
	RunID       string
	Concurrency int

	Attempted    int // all samples, successful or not (0 = nothing ran)
	Succeeded    int
	Failed       int
	PoolTimeouts int

	WallTime time.Duration // the runner's outer clock span
	QPS      float64       // successful samples / WallTime

	LatencyMin    time.Duration
	LatencyMax    time.Duration
	LatencyAvg    time.Duration
	LatencyP50    time.Duration
	LatencyP95    time.Duration
	LatencyStddev time.Duration

	TotalRows int64
	AvgRows   float64

	// Degraded marks runs cut short by the safety timeout or missing
	// worker outcomes. The numbers are reported anyway, never hidden.
	Degraded bool
}

// SweepResult holds one BenchStats per tested level, ascending.
type SweepResult struct {
	Levels []BenchStats
}

// Optimal returns the level with the highest throughput. A descriptive label
// for the report, not a control decision.
func (r SweepResult) Optimal() (BenchStats, bool) {
	if len(r.Levels) == 0 {
		return BenchStats{}, false
	}
	best := r.Levels[0]
	for _, s := range r.Levels[1:] {
		if s.QPS > best.QPS {
			best = s
		}
	}
	return best, true
}
