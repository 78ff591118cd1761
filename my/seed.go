package my

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"

	"mapbench/bench"
	"mapbench/datagen"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CreateSchema creates the map table and its snapshot index.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS map (
			branch        VARCHAR(10) NOT NULL,
			tile          VARCHAR(10) NOT NULL,
			element       VARCHAR(10) NOT NULL,
			tsver         BIGINT      NOT NULL,
			element_value VARCHAR(20),
			element_md5   CHAR(16),
			PRIMARY KEY (branch, tile, element, tsver),
			INDEX idx_map_tile_tsver (tile, tsver DESC)
		)`)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

// Seed loads generated rows through the bounded batch queue, one multi-value
// INSERT per batch.
func Seed(ctx context.Context, db *sql.DB, gen *datagen.Generator, total, batchSize, loaders int, log *zap.Logger) (int64, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var existing int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM map").Scan(&existing); err != nil {
		return 0, fmt.Errorf("seed check: %w", err)
	}
	if existing >= int64(total) {
		log.Info("data already seeded", zap.Int64("rows", existing))
		return 0, nil
	}

	log.Info("seeding map data",
		zap.Int("rows", total),
		zap.Int("batch_size", batchSize),
		zap.Int("loaders", loaders))

	queue := datagen.NewBatchQueue(loaders * 3)
	bar := bench.NewProgressBar(int64(total)).SetCaption("Seeding")
	defer bar.Finish()

	var inserted atomic.Int64
	g, gctx := errgroup.WithContext(ctx)

	for w := 0; w < loaders; w++ {
		g.Go(func() error {
			for {
				batch, ok := queue.Pop(gctx)
				if !ok {
					return nil
				}
				if err := insertBatch(gctx, db, batch); err != nil {
					return err
				}
				inserted.Add(int64(len(batch)))
				bar.Add(len(batch))
			}
		})
	}

	g.Go(func() error {
		defer queue.Close()
		for produced := 0; produced < total; {
			n := batchSize
			if rest := total - produced; rest < n {
				n = rest
			}
			if !queue.Push(gctx, gen.Batch(n)) {
				return gctx.Err()
			}
			produced += n
		}
		return nil
	})

	err := g.Wait()
	return inserted.Load(), err
}

func insertBatch(ctx context.Context, db *sql.DB, batch []datagen.Row) error {
	var sb strings.Builder
	sb.WriteString("INSERT IGNORE INTO map (branch, tile, element, tsver, element_value, element_md5) VALUES ")
	args := make([]any, 0, len(batch)*6)
	for i, r := range batch {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?,?,?,?,?,?)")
		args = append(args, r.Branch, r.Tile, r.Element, r.Tsver, r.Value, r.MD5)
	}
	_, err := db.ExecContext(ctx, sb.String(), args...)
	return err
}
