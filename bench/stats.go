package bench

import (
	"math"
	"sort"
	"time"
)

// Aggregate reduces one run's merged samples into BenchStats. Failed samples
// are excluded from latency and row statistics but counted, with pool
// timeouts broken out so queueing starvation stays distinguishable from
// query failures. QPS counts successful samples over the runner's wall span.
func Aggregate(label string, concurrency int, samples []Sample, wall time.Duration) BenchStats {
	stats := BenchStats{
		Label:       label,
		Concurrency: concurrency,
		Attempted:   len(samples),
		WallTime:    wall,
	}

	var lats []time.Duration
	for _, s := range samples {
		if s.Failed() {
			stats.Failed++
			if s.PoolTimeout {
				stats.PoolTimeouts++
			}
			continue
		}
		lats = append(lats, s.Latency)
		stats.TotalRows += s.Rows
	}
	stats.Succeeded = len(lats)
	if wall > 0 {
		stats.QPS = float64(stats.Succeeded) / wall.Seconds()
	}

	// Attempted stays nonzero for an all-failed run, so zeroed latency
	// stats remain distinguishable from "nothing ran at all".
	if len(lats) == 0 {
		return stats
	}

	sort.Slice(lats, func(i, j int) bool { return lats[i] < lats[j] })

	var sum time.Duration
	for _, d := range lats {
		sum += d
	}
	n := len(lats)
	stats.LatencyAvg = sum / time.Duration(n)
	stats.LatencyMin = lats[0]
	stats.LatencyMax = lats[n-1]
	stats.LatencyP50 = median(lats)
	stats.LatencyP95 = lats[p95Index(n)]
	stats.LatencyStddev = stddev(lats)
	stats.AvgRows = float64(stats.TotalRows) / float64(n)
	return stats
}

// p95Index is floor(0.95*n) on the ascending sort, clamped to the last
// element. Integer arithmetic keeps the cut exact for every n; no rank
// interpolation.
func p95Index(n int) int {
	idx := n * 95 / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

func median(sorted []time.Duration) time.Duration {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// stddev is the sample standard deviation (n-1 divisor); below two samples
// it reports 0 rather than a division fault.
func stddev(lats []time.Duration) time.Duration {
	n := len(lats)
	if n < 2 {
		return 0
	}
	var sum float64
	for _, d := range lats {
		sum += float64(d)
	}
	mean := sum / float64(n)
	var ss float64
	for _, d := range lats {
		diff := float64(d) - mean
		ss += diff * diff
	}
	return time.Duration(math.Sqrt(ss / float64(n-1)))
}
