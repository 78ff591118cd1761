package datagen

import (
	"context"
	"sync"
)

// BatchQueue is a bounded queue of row batches with an explicit close
// signal. Push blocks while the queue is full, giving the generator
// backpressure; Pop blocks while it is empty; Close lets queued batches
// drain and then unblocks every waiting consumer.
type BatchQueue struct {
	ch   chan []Row
	once sync.Once
}

func NewBatchQueue(capacity int) *BatchQueue {
	return &BatchQueue{ch: make(chan []Row, capacity)}
}

// Push enqueues a batch, blocking on a full queue. Returns false once ctx
// ends. Only the producer may call Push, and never after Close.
func (q *BatchQueue) Push(ctx context.Context, batch []Row) bool {
	select {
	case q.ch <- batch:
		return true
	case <-ctx.Done():
		return false
	}
}

// Pop dequeues the next batch, blocking on an empty queue. ok is false once
// the queue is closed and drained, or ctx ends.
func (q *BatchQueue) Pop(ctx context.Context) (batch []Row, ok bool) {
	select {
	case batch, ok = <-q.ch:
		return batch, ok
	case <-ctx.Done():
		return nil, false
	}
}

// Close marks the end of production. Idempotent.
func (q *BatchQueue) Close() {
	q.once.Do(func() { close(q.ch) })
}
