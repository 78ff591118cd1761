package bench

import (
	"fmt"
	"time"

	"github.com/fatih/color"
)

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	warnMark = color.New(color.FgYellow).Sprint("⚠")
	optColor = color.New(color.FgGreen, color.Bold)
)

// PrintStats renders one level's result box.
func PrintStats(s BenchStats) {
	label := s.Label
	if s.Degraded {
		label += " " + warnMark + " degraded"
	}
	fmt.Printf("\n┌─────────────────────────────────────────┐\n")
	fmt.Printf("│  %-39s│\n", label)
	fmt.Printf("├─────────────────────────────────────────┤\n")
	fmt.Printf("│  Concurrency:  %-24d│\n", s.Concurrency)
	fmt.Printf("│  Attempted:    %-24d│\n", s.Attempted)
	fmt.Printf("│  Succeeded:    %-24d│\n", s.Succeeded)
	fmt.Printf("│  Failed:       %-24s│\n", fmt.Sprintf("%d (%d pool timeouts)", s.Failed, s.PoolTimeouts))
	fmt.Printf("│  Wall time:    %-24s│\n", s.WallTime.Round(time.Millisecond))
	fmt.Printf("│  QPS:          %-24.2f│\n", s.QPS)
	fmt.Printf("├─────────────────────────────────────────┤\n")
	fmt.Printf("│  Latency min:  %-24s│\n", FmtDur(s.LatencyMin))
	fmt.Printf("│  Latency max:  %-24s│\n", FmtDur(s.LatencyMax))
	fmt.Printf("│  Latency avg:  %-24s│\n", FmtDur(s.LatencyAvg))
	fmt.Printf("│  Latency p50:  %-24s│\n", FmtDur(s.LatencyP50))
	fmt.Printf("│  Latency p95:  %-24s│\n", FmtDur(s.LatencyP95))
	fmt.Printf("│  Latency σ:    %-24s│\n", FmtDur(s.LatencyStddev))
	fmt.Printf("├─────────────────────────────────────────┤\n")
	fmt.Printf("│  Total rows:   %-24d│\n", s.TotalRows)
	fmt.Printf("│  Avg rows:     %-24.1f│\n", s.AvgRows)
	fmt.Printf("└─────────────────────────────────────────┘\n")
}

// PrintSweep renders the final comparison table, ascending by concurrency,
// with the optimal level marked.
func PrintSweep(r SweepResult) {
	if len(r.Levels) == 0 {
		return
	}
	optimal, _ := r.Optimal()

	fmt.Printf("\n╔══════════════════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║  SWEEP SUMMARY                                                       ║\n")
	fmt.Printf("╠══════════╦══════════╦══════════╦══════════╦══════════╦═══════════════╣\n")
	fmt.Printf("║  Conc    ║   QPS    ║   avg    ║   p50    ║   p95    ║ Failed        ║\n")
	fmt.Printf("╠══════════╬══════════╬══════════╬══════════╬══════════╬═══════════════╣\n")
	for _, s := range r.Levels {
		marker := "  "
		if s.RunID == optimal.RunID {
			marker = optColor.Sprint("→ ")
		}
		note := fmt.Sprintf("%d", s.Failed)
		if s.Degraded {
			note += " " + warnMark
		}
		fmt.Printf("║ %s%-7d ║ %8.1f ║ %8s ║ %8s ║ %8s ║ %-13s ║\n",
			marker, s.Concurrency, s.QPS,
			FmtDur(s.LatencyAvg), FmtDur(s.LatencyP50), FmtDur(s.LatencyP95), note)
	}
	fmt.Printf("╚══════════╩══════════╩══════════╩══════════╩══════════╩═══════════════╝\n")
	fmt.Printf("  %s optimal concurrency: %s at %s QPS\n",
		okMark,
		optColor.Sprintf("%d", optimal.Concurrency),
		optColor.Sprintf("%.1f", optimal.QPS))
}

// FmtDur renders sub-millisecond latencies in µs, everything else in ms.
func FmtDur(d time.Duration) string {
	us := float64(d.Microseconds())
	if us < 1000 {
		return fmt.Sprintf("%.0fµs", us)
	}
	return fmt.Sprintf("%.2fms", us/1000)
}
