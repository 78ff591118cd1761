package bench

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func okSamples(lats ...time.Duration) []Sample {
	samples := make([]Sample, 0, len(lats))
	for _, l := range lats {
		samples = append(samples, Sample{Latency: l, Rows: 1})
	}
	return samples
}

func TestAggregateQPSExact(t *testing.T) {
	samples := make([]Sample, 500)
	for i := range samples {
		samples[i] = Sample{Latency: time.Millisecond, Rows: 2}
	}
	stats := Aggregate("qps", 10, samples, 10*time.Second)

	assert.Equal(t, 500, stats.Attempted)
	assert.Equal(t, 500, stats.Succeeded)
	assert.Equal(t, 50.0, stats.QPS)
	assert.Equal(t, int64(1000), stats.TotalRows)
	assert.Equal(t, 2.0, stats.AvgRows)
}

func TestAggregateP95Index(t *testing.T) {
	// Index semantics pinned: floor(0.95*n) on the ascending sort, via
	// integer arithmetic, clamped to the last element.
	assert.Equal(t, 0, p95Index(1))
	assert.Equal(t, 9, p95Index(10))
	assert.Equal(t, 19, p95Index(20))
	assert.Equal(t, 19, p95Index(21))
	assert.Equal(t, 95, p95Index(100))

	// 1ms..20ms ascending: index 19 is the 20ms sample.
	var lats []time.Duration
	for i := 1; i <= 20; i++ {
		lats = append(lats, time.Duration(i)*time.Millisecond)
	}
	stats := Aggregate("p95", 1, okSamples(lats...), time.Second)
	assert.Equal(t, 20*time.Millisecond, stats.LatencyP95)

	// For 100 samples 1ms..100ms, p95 is the 96th value.
	lats = nil
	for i := 1; i <= 100; i++ {
		lats = append(lats, time.Duration(i)*time.Millisecond)
	}
	stats = Aggregate("p95", 1, okSamples(lats...), time.Second)
	assert.Equal(t, 96*time.Millisecond, stats.LatencyP95)
}

func TestAggregateMedian(t *testing.T) {
	stats := Aggregate("odd", 1, okSamples(3*time.Millisecond, time.Millisecond, 2*time.Millisecond), time.Second)
	assert.Equal(t, 2*time.Millisecond, stats.LatencyP50)

	stats = Aggregate("even", 1, okSamples(time.Millisecond, 2*time.Millisecond, 3*time.Millisecond, 10*time.Millisecond), time.Second)
	assert.Equal(t, 2500*time.Microsecond, stats.LatencyP50)
}

func TestAggregateSingleSampleStddev(t *testing.T) {
	stats := Aggregate("one", 1, okSamples(5*time.Millisecond), time.Second)
	assert.Equal(t, time.Duration(0), stats.LatencyStddev)
	assert.Equal(t, 5*time.Millisecond, stats.LatencyMin)
	assert.Equal(t, 5*time.Millisecond, stats.LatencyMax)
	assert.Equal(t, 5*time.Millisecond, stats.LatencyP95)
}

func TestAggregateStddev(t *testing.T) {
	// Sample stddev of {2ms, 4ms, 4ms, 4ms, 5ms, 5ms, 7ms, 9ms} is
	// ~2.138ms with the n-1 divisor.
	stats := Aggregate("sd", 1, okSamples(
		2*time.Millisecond, 4*time.Millisecond, 4*time.Millisecond, 4*time.Millisecond,
		5*time.Millisecond, 5*time.Millisecond, 7*time.Millisecond, 9*time.Millisecond,
	), time.Second)
	assert.InDelta(t, 2.138e6, float64(stats.LatencyStddev), 1e4)
}

func TestAggregateEmptyDistinguishableFromAllFailed(t *testing.T) {
	empty := Aggregate("empty", 1, nil, time.Second)
	assert.Equal(t, 0, empty.Attempted)
	assert.Equal(t, 0.0, empty.QPS)
	assert.Equal(t, time.Duration(0), empty.LatencyP95)

	failed := Aggregate("failed", 1, []Sample{
		{Err: errors.New("boom")},
		{Err: ErrPoolExhausted, PoolTimeout: true},
	}, time.Second)
	assert.Equal(t, 2, failed.Attempted)
	assert.Equal(t, 0, failed.Succeeded)
	assert.Equal(t, 2, failed.Failed)
	assert.Equal(t, 1, failed.PoolTimeouts)
	assert.Equal(t, 0.0, failed.QPS)
	assert.Equal(t, time.Duration(0), failed.LatencyP95)
}

func TestAggregateExcludesFailuresFromLatency(t *testing.T) {
	samples := append(okSamples(time.Millisecond, 3*time.Millisecond),
		Sample{Latency: time.Hour, Err: errors.New("slow failure")})
	stats := Aggregate("mixed", 1, samples, time.Second)

	assert.Equal(t, 3, stats.Attempted)
	assert.Equal(t, 2, stats.Succeeded)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 3*time.Millisecond, stats.LatencyMax)
	assert.Equal(t, 2.0, stats.QPS)
}
