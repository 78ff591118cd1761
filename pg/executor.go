package pg

import (
	"context"
	"fmt"
	"time"

	"mapbench/bench"
)

// snapshotQuery is the benchmarked tile read: each element's newest version
// at or below the requested bound.
const snapshotQuery = `
	SELECT element, MAX(tsver) AS max_tsver
	FROM map
	WHERE tile = $1 AND tsver <= $2
	GROUP BY element`

// Executor runs the tile snapshot read on a pooled pg handle.
type Executor struct{}

func (Executor) Execute(ctx context.Context, conn bench.Conn, p bench.QueryParams) bench.Sample {
	c, ok := conn.(*Conn)
	if !ok {
		return bench.Sample{Err: fmt.Errorf("pg: unexpected conn type %T", conn)}
	}

	// Timing brackets the round trip, including draining the rows: the
	// response is not fully served until the result set is consumed.
	start := time.Now()
	rows, err := c.Query(ctx, snapshotQuery, p.Key, p.Version)
	if err != nil {
		return bench.Sample{Latency: time.Since(start), Err: err}
	}
	var count int64
	for rows.Next() {
		count++
	}
	rows.Close()
	latency := time.Since(start)

	if err := rows.Err(); err != nil {
		return bench.Sample{Latency: latency, Err: err}
	}
	return bench.Sample{Latency: latency, Rows: count}
}
