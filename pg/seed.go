package pg

import (
	"context"
	"fmt"
	"sync/atomic"

	"mapbench/bench"
	"mapbench/datagen"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var mapColumns = []string{"branch", "tile", "element", "tsver", "element_value", "element_md5"}

// CreateSchema creates the map table and the index the snapshot read leans on.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS map (
			branch        VARCHAR(10) NOT NULL,
			tile          VARCHAR(10) NOT NULL,
			element       VARCHAR(10) NOT NULL,
			tsver         BIGINT      NOT NULL,
			element_value VARCHAR(20),
			element_md5   CHAR(16),
			PRIMARY KEY (branch, tile, element, tsver)
		)`)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	_, err = pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_map_tile_tsver ON map (tile, tsver DESC)`)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Seed streams generated batches through a bounded queue into loader
// workers. The queue gives the generator backpressure; its Close is the
// termination signal every loader observes.
func Seed(ctx context.Context, pool *pgxpool.Pool, gen *datagen.Generator, total, batchSize, loaders int, log *zap.Logger) (int64, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var existing int64
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM map").Scan(&existing); err != nil {
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
				if err := copyBatch(gctx, pool, batch); err != nil {
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

func copyBatch(ctx context.Context, pool *pgxpool.Pool, batch []datagen.Row) error {
	_, err := pool.CopyFrom(ctx, pgx.Identifier{"map"}, mapColumns,
		pgx.CopyFromSlice(len(batch), func(i int) ([]any, error) {
			r := batch[i]
			return []any{r.Branch, r.Tile, r.Element, r.Tsver, r.Value, r.MD5}, nil
		}))
	return err
}
