package pg

import (
	"context"
	"fmt"
	"time"

	"mapbench/bench"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Conn adapts a single pgx connection to the harness pool's handle type.
type Conn struct {
	*pgx.Conn
}

func (c *Conn) Close(ctx context.Context) error { return c.Conn.Close(ctx) }

func dsn(c bench.ConnConfig, sslmode string) string {
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, sslmode)
}

// Dialer returns the harness pool's dial function: one plain pgx connection
// per pool handle.
func Dialer(cfg bench.ConnConfig) func(context.Context) (bench.Conn, error) {
	return func(ctx context.Context) (bench.Conn, error) {
		conn, err := pgx.Connect(ctx, dsn(cfg, "disable"))
		if err != nil {
			return nil, err
		}
		return &Conn{conn}, nil
	}
}

// ConnectPool opens a driver-managed pgxpool for the seed phase, where
// checkout latency is nobody's measurement.
func ConnectPool(ctx context.Context, cfg bench.ConnConfig, maxConns int32) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn(cfg, "disable"))
	if err != nil {
		return nil, err
	}
	config.MaxConns = maxConns
	config.MinConns = 2

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
