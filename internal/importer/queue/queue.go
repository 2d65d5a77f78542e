// Package queue batches converted scores and writes them through the store
// in chunks, so one import issues a handful of inserts instead of one per
// score.
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/seiseki/internal/domain/model"
	"github.com/okian/seiseki/internal/repository"
	"github.com/okian/seiseki/pkg/metrics"
)

// DefaultThreshold is the buffer size that triggers an automatic flush.
const DefaultThreshold = 500

// ScoreQueue buffers scores up to a threshold and flushes them to the store.
// Safe for concurrent Append from converter workers. A failed flush is fatal
// to the import; the queue does not retry.
type ScoreQueue struct {
	mu        sync.Mutex
	store     repository.Store
	threshold int
	buf       []*model.Score
}

// Option configures a ScoreQueue.
type Option func(*ScoreQueue)

// WithThreshold overrides the auto-flush threshold.
func WithThreshold(n int) Option {
	return func(q *ScoreQueue) {
		if n > 0 {
			q.threshold = n
		}
	}
}

// New creates a ScoreQueue writing through store.
func New(store repository.Store, opts ...Option) *ScoreQueue {
	q := &ScoreQueue{store: store, threshold: DefaultThreshold}
	for _, o := range opts {
		o(q)
	}
	return q
}

// Append adds a score to the buffer. When the buffer reaches the threshold
// it is flushed immediately; Append then returns the number of scores
// written and true. Below the threshold it returns (0, false).
func (q *ScoreQueue) Append(ctx context.Context, score *model.Score) (int, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.buf = append(q.buf, score)
	metrics.UpdateQueueSize(len(q.buf))

	if len(q.buf) < q.threshold {
		return 0, false, nil
	}

	n, err := q.flushLocked(ctx)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// Flush writes out whatever the buffer holds and returns the count. An
// empty buffer flushes to 0 without touching the store.
func (q *ScoreQueue) Flush(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.flushLocked(ctx)
}

func (q *ScoreQueue) flushLocked(ctx context.Context) (int, error) {
	if len(q.buf) == 0 {
		return 0, nil
	}

	n := len(q.buf)
	if err := q.store.InsertScores(ctx, q.buf); err != nil {
		return 0, fmt.Errorf("queue: flushing %d scores: %w", n, err)
	}

	q.buf = q.buf[:0]
	metrics.UpdateQueueSize(0)
	metrics.RecordQueueFlush(n)
	return n, nil
}

// Len reports the current buffer size.
func (q *ScoreQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}
