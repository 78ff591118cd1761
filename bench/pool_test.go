package bench

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	closed atomic.Bool
}

func (c *fakeConn) Close(ctx context.Context) error {
	c.closed.Store(true)
	return nil
}

func newFakePool(t *testing.T, size int, timeout time.Duration) *Pool {
	t.Helper()
	pool, err := NewPool(context.Background(), size, timeout, func(ctx context.Context) (Conn, error) {
		return &fakeConn{}, nil
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Shutdown(context.Background()) })
	return pool
}

func TestPoolBlocksUntilRelease(t *testing.T) {
	pool := newFakePool(t, 2, 0)
	ctx := context.Background()

	c1, err := pool.Acquire(ctx)
	require.NoError(t, err)
	c2, err := pool.Acquire(ctx)
	require.NoError(t, err)

	got := make(chan Conn, 1)
	go func() {
		if c, err := pool.Acquire(ctx); err == nil {
			got <- c
		}
	}()

	select {
	case <-got:
		t.Fatal("third acquire should block while both handles are held")
	case <-time.After(50 * time.Millisecond):
	}

	pool.Release(c1)
	select {
	case c := <-got:
		assert.Same(t, c1, c, "release should hand the freed conn to the waiter")
	case <-time.After(time.Second):
		t.Fatal("waiter was not unblocked by the release")
	}
	pool.Release(c2)
}

func TestPoolAcquireTimeout(t *testing.T) {
	pool := newFakePool(t, 1, 30*time.Millisecond)
	ctx := context.Background()

	c, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer pool.Release(c)

	_, err = pool.Acquire(ctx)
	assert.ErrorIs(t, err, ErrPoolExhausted)
}

func TestPoolShutdownUnblocksWaiters(t *testing.T) {
	pool := newFakePool(t, 1, 0)
	ctx := context.Background()

	c, err := pool.Acquire(ctx)
	require.NoError(t, err)

	errs := make(chan error, 1)
	go func() {
		_, err := pool.Acquire(ctx)
		errs <- err
	}()
	time.Sleep(20 * time.Millisecond) // let the waiter block

	require.NoError(t, pool.Shutdown(ctx))
	select {
	case err := <-errs:
		assert.ErrorIs(t, err, ErrPoolClosed)
	case <-time.After(time.Second):
		t.Fatal("shutdown did not unblock the waiter")
	}

	// A handle still checked out is closed on release.
	pool.Release(c)
	assert.True(t, c.(*fakeConn).closed.Load())
}

func TestPoolShutdownIdempotent(t *testing.T) {
	pool := newFakePool(t, 2, 0)
	require.NoError(t, pool.Shutdown(context.Background()))
	require.NoError(t, pool.Shutdown(context.Background()))

	_, err := pool.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestPoolDialFailureClosesOpened(t *testing.T) {
	var opened []*fakeConn
	dialErr := errors.New("connection refused")
	_, err := NewPool(context.Background(), 3, 0, func(ctx context.Context) (Conn, error) {
		if len(opened) == 2 {
			return nil, dialErr
		}
		c := &fakeConn{}
		opened = append(opened, c)
		return c, nil
	})
	require.ErrorIs(t, err, dialErr)
	for _, c := range opened {
		assert.True(t, c.closed.Load(), "handles opened before the failure must be closed")
	}
}

func TestPoolAcquireHonorsContext(t *testing.T) {
	pool := newFakePool(t, 1, 0)
	c, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	defer pool.Release(c)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = pool.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
