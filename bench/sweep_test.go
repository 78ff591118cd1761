package bench

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSweepEndToEnd(t *testing.T) {
	// Pool of 2, fake executor answering in 2ms with 5 rows, levels given
	// out of order: the sweep must run [1,2] ascending and report both.
	exec := &fakeExecutor{latency: 2 * time.Millisecond, rows: 5, delay: 2 * time.Millisecond}
	r := newTestRunner(t, 2, exec)
	s := &Sweep{Runner: r, Log: zap.NewNop()}

	var seen []int
	s.OnLevel = func(stats BenchStats) { seen = append(seen, stats.Concurrency) }

	result, err := s.Run(context.Background(), []int{2, 1}, StopCondition{Iterations: 10})
	require.NoError(t, err)
	require.Len(t, result.Levels, 2)

	assert.Equal(t, 1, result.Levels[0].Concurrency)
	assert.Equal(t, 2, result.Levels[1].Concurrency)
	assert.Equal(t, []int{1, 2}, seen)
	for _, stats := range result.Levels {
		assert.Equal(t, 5.0, stats.AvgRows)
		assert.Equal(t, 0, stats.Failed)
	}

	optimal, ok := result.Optimal()
	require.True(t, ok)
	assert.Equal(t, 2, optimal.Concurrency, "two workers at fixed latency should double throughput")
}

func TestSweepRequiresLevels(t *testing.T) {
	s := &Sweep{Runner: newTestRunner(t, 1, &fakeExecutor{})}
	_, err := s.Run(context.Background(), nil, StopCondition{Iterations: 1})
	assert.Error(t, err)
}

func TestSweepCooldownHonorsContext(t *testing.T) {
	exec := &fakeExecutor{latency: time.Millisecond, rows: 1}
	s := &Sweep{Runner: newTestRunner(t, 2, exec), Cooldown: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	result, err := s.Run(ctx, []int{1, 2}, StopCondition{Iterations: 1})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, result.Levels, 1, "the completed level is still reported")
}

func TestOptimalEmpty(t *testing.T) {
	_, ok := SweepResult{}.Optimal()
	assert.False(t, ok)
}
