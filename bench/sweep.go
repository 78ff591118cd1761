package bench

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Sweep runs the benchmark once per concurrency level, strictly ascending
// and never overlapping: two levels sharing one pool would contend with each
// other and invalidate both sets of numbers.
type Sweep struct {
	Runner *Runner
	// Cooldown is the pause between levels, letting the backend settle.
	Cooldown time.Duration
	// OnLevel, when set, is called with each level's stats as it completes.
	OnLevel func(BenchStats)

	Log *zap.Logger
}

// Run executes every level and returns the collected results in ascending
// concurrency order. A level that errors at setup aborts the sweep; degraded
// levels are annotated in their stats and the sweep continues.
func (s *Sweep) Run(ctx context.Context, levels []int, stop StopCondition) (SweepResult, error) {
	if len(levels) == 0 {
		return SweepResult{}, errors.New("bench: sweep needs at least one concurrency level")
	}
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}

	ordered := append([]int(nil), levels...)
	sort.Ints(ordered)

	var result SweepResult
	for i, level := range ordered {
		stats, err := s.Runner.Run(ctx, fmt.Sprintf("concurrency %d", level), level, stop)
		if err != nil {
			return result, fmt.Errorf("bench: level %d: %w", level, err)
		}
		result.Levels = append(result.Levels, stats)
		if s.OnLevel != nil {
			s.OnLevel(stats)
		}

		if s.Cooldown > 0 && i < len(ordered)-1 {
			log.Info("cooling down", zap.Duration("pause", s.Cooldown))
			select {
			case <-time.After(s.Cooldown):
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}
	}
	return result, nil
}
