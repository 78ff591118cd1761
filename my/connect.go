package my

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mapbench/bench"

	_ "github.com/go-sql-driver/mysql"
)

// Conn leases one dedicated session from the shared *sql.DB for the
// harness pool.
type Conn struct {
	conn *sql.Conn
}

func (c *Conn) Close(ctx context.Context) error { return c.conn.Close() }

// Open opens the shared database handle. maxConns must be at least the
// harness pool size so every leased session maps to a real connection.
func Open(cfg bench.ConnConfig, maxConns int) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&interpolateParams=true&timeout=30s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Dialer returns the harness pool's dial function over an open handle.
func Dialer(db *sql.DB) func(context.Context) (bench.Conn, error) {
	return func(ctx context.Context) (bench.Conn, error) {
		c, err := db.Conn(ctx)
		if err != nil {
			return nil, err
		}
		return &Conn{conn: c}, nil
	}
}
