package my

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"mapbench/bench"

	"go.uber.org/zap"
)

// jsonUpdate patches two fields inside the player_data document in place,
// the write-heavy workload from the game backend.
const jsonUpdate = `
	UPDATE players
	SET player_data = JSON_SET(player_data, '$.resource', ?, '$.energy', ?)
	WHERE id = ?`

// JSONExecutor issues partial JSON document updates keyed by player id. The
// sampler's payload seed deterministically picks the new resource and energy
// values, keeping all randomness inside the per-worker sampler.
type JSONExecutor struct{}

func (JSONExecutor) Execute(ctx context.Context, conn bench.Conn, p bench.QueryParams) bench.Sample {
	c, ok := conn.(*Conn)
	if !ok {
		return bench.Sample{Err: fmt.Errorf("my: unexpected conn type %T", conn)}
	}
	id, err := strconv.ParseInt(p.Key, 10, 64)
	if err != nil {
		return bench.Sample{Err: fmt.Errorf("my: bad player id %q: %w", p.Key, err)}
	}
	resource := 100 + p.Version%9901 // 100..10000
	energy := 10 + p.Version%91      // 10..100

	start := time.Now()
	res, err := c.conn.ExecContext(ctx, jsonUpdate, resource, energy, id)
	latency := time.Since(start)
	if err != nil {
		return bench.Sample{Latency: latency, Err: err}
	}
	affected, _ := res.RowsAffected()
	return bench.Sample{Latency: latency, Rows: affected}
}

// CreatePlayers creates and fills the players table with count seeded JSON
// documents, skipping the load when enough rows already exist.
func CreatePlayers(ctx context.Context, db *sql.DB, count int, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS players (
			id          BIGINT PRIMARY KEY AUTO_INCREMENT,
			player_data JSON NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("create players: %w", err)
	}

	var existing int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM players").Scan(&existing); err != nil {
		return fmt.Errorf("players seed check: %w", err)
	}
	if existing >= int64(count) {
		log.Info("players already seeded", zap.Int64("rows", existing))
		return nil
	}

	log.Info("seeding players", zap.Int("rows", count))
	bar := bench.NewProgressBar(int64(count)).SetCaption("Players")
	defer bar.Finish()

	const batch = 500
	for done := int(existing); done < count; {
		n := batch
		if rest := count - done; rest < n {
			n = rest
		}
		if err := insertPlayers(ctx, db, n); err != nil {
			return err
		}
		done += n
		bar.Add(n)
	}
	return nil
}

func insertPlayers(ctx context.Context, db *sql.DB, n int) error {
	doc := `{"resource": 1000, "energy": 50, "level": 1}`
	var sb strings.Builder
	sb.WriteString("INSERT INTO players (player_data) VALUES ")
	args := make([]any, 0, n)
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString("(?)")
		args = append(args, doc)
	}
	_, err := db.ExecContext(ctx, sb.String(), args...)
	return err
}
