package my

import (
	"context"
	"fmt"
	"time"

	"mapbench/bench"
)

const snapshotQuery = `
	SELECT element, MAX(tsver) AS max_tsver
	FROM map
	WHERE tile = ? AND tsver <= ?
	GROUP BY element`

// SnapshotExecutor runs the tile snapshot read on a pooled MySQL session.
type SnapshotExecutor struct{}

func (SnapshotExecutor) Execute(ctx context.Context, conn bench.Conn, p bench.QueryParams) bench.Sample {
	c, ok := conn.(*Conn)
	if !ok {
		return bench.Sample{Err: fmt.Errorf("my: unexpected conn type %T", conn)}
	}

	start := time.Now()
	rows, err := c.conn.QueryContext(ctx, snapshotQuery, p.Key, p.Version)
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
