package bench

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrPoolExhausted means no handle freed up within the pool timeout.
	ErrPoolExhausted = errors.New("bench: connection pool exhausted")
	// ErrPoolClosed means Shutdown ran, including while the caller was blocked.
	ErrPoolClosed = errors.New("bench: connection pool closed")
)

// Conn is one reusable database handle held by the pool.
type Conn interface {
	Close(ctx context.Context) error
}

// Pool is a fixed-size blocking pool of Conns. The free list is the only
// state shared between workers; everything else in a run is worker-local.
type Pool struct {
	free    chan Conn
	timeout time.Duration
	done    chan struct{}
	once    sync.Once
	size    int
}

// NewPool dials size connections up front. Any dial failure closes the
// handles opened so far and is returned as a setup error. Size must cover
// the deepest concurrency level the caller intends to run, otherwise
// workers starve on checkout.
func NewPool(ctx context.Context, size int, timeout time.Duration, dial func(context.Context) (Conn, error)) (*Pool, error) {
	if size < 1 {
		return nil, errors.New("bench: pool size must be at least 1")
	}
	p := &Pool{
		free:    make(chan Conn, size),
		timeout: timeout,
		done:    make(chan struct{}),
		size:    size,
	}
	for i := 0; i < size; i++ {
		c, err := dial(ctx)
		if err != nil {
			_ = p.Shutdown(ctx)
			return nil, fmt.Errorf("bench: dial connection %d/%d: %w", i+1, size, err)
		}
		p.free <- c
	}
	return p, nil
}

func (p *Pool) Size() int { return p.size }

// Acquire returns a free handle, blocking until one is released. It fails
// with ErrPoolExhausted once the pool timeout elapses, ErrPoolClosed once
// Shutdown has run, or the context error if ctx ends first.
func (p *Pool) Acquire(ctx context.Context) (Conn, error) {
	var expired <-chan time.Time
	if p.timeout > 0 {
		t := time.NewTimer(p.timeout)
		defer t.Stop()
		expired = t.C
	}
	select {
	case c := <-p.free:
		return c, nil
	case <-p.done:
		return nil, ErrPoolClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-expired:
		return nil, ErrPoolExhausted
	}
}

// Release returns a handle to the free list. Must be called exactly once per
// successful Acquire, on every exit path. After Shutdown the handle is
// closed instead of pooled.
func (p *Pool) Release(c Conn) {
	select {
	case <-p.done:
		_ = c.Close(context.Background())
		return
	default:
	}
	// The free list has capacity for every handle, so the send cannot block.
	p.free <- c
}

// Shutdown closes every pooled handle and unblocks callers waiting in
// Acquire. Idempotent; handles still checked out are closed by Release.
func (p *Pool) Shutdown(ctx context.Context) error {
	var err error
	p.once.Do(func() {
		close(p.done)
		for {
			select {
			case c := <-p.free:
				if cerr := c.Close(ctx); cerr != nil && err == nil {
					err = cerr
				}
			default:
				return
			}
		}
	})
	return err
}
