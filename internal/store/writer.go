package store

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"

	"wordbreaker/internal/game"
)

// Writer saves snapshots in the background. Save never blocks; snapshots queued
// for the same session before they are written collapse to the latest one.
type Writer struct {
	store   Store
	timeout time.Duration

	// Failed writes are retried after an exponential delay starting at
	// retryInitial and capped at retryMax.
	retryInitial time.Duration
	retryMax     time.Duration

	mu      sync.Mutex
	pending map[string]game.State

	flushMu sync.Mutex
	wake    chan struct{}
	done    chan struct{}
}

// NewWriter returns a Writer for s. Each store write is bounded by timeout.
func NewWriter(s Store, timeout time.Duration) *Writer {
	return &Writer{
		store:        s,
		timeout:      timeout,
		retryInitial: 500 * time.Millisecond,
		retryMax:     30 * time.Second,
		pending:      make(map[string]game.State),
		wake:         make(chan struct{}, 1),
		done:         make(chan struct{}),
	}
}

// Save queues st as the latest snapshot of session id.
func (w *Writer) Save(id string, st game.State) {
	w.mu.Lock()
	w.pending[id] = st
	w.mu.Unlock()
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Run writes queued snapshots until ctx is cancelled, then flushes what is left
// and closes Done. Snapshots that fail to write are retried with backoff even
// when no further Save arrives.
func (w *Writer) Run(ctx context.Context) {
	defer close(w.done)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.retryInitial
	b.MaxInterval = w.retryMax
	b.Reset()

	retry := time.NewTimer(w.retryMax)
	retry.Stop()
	defer retry.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Flush(context.Background())
			return
		case <-w.wake:
		case <-retry.C:
		}
		if failed := w.Flush(ctx); failed > 0 {
			next := b.NextBackOff()
			log.Debug().Int("failed", failed).Dur("retry_in", next).Msg("session writes failed, retrying")
			retry.Reset(next)
			continue
		}
		b.Reset()
		retry.Stop()
	}
}

// Done is closed once Run has returned.
func (w *Writer) Done() <-chan struct{} {
	return w.done
}

// Flush writes every queued snapshot now and returns how many failed.
func (w *Writer) Flush(ctx context.Context) int {
	w.flushMu.Lock()
	defer w.flushMu.Unlock()

	w.mu.Lock()
	batch := w.pending
	w.pending = make(map[string]game.State, len(batch))
	w.mu.Unlock()

	failed := 0
	for id, st := range batch {
		wctx, cancel := context.WithTimeout(ctx, w.timeout)
		err := w.store.Save(wctx, id, st)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("session", id).Msg("failed to persist session")
			failed++
			w.requeue(id, st)
		}
	}
	return failed
}

// requeue puts st back unless a newer snapshot for id arrived meanwhile.
func (w *Writer) requeue(id string, st game.State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, newer := w.pending[id]; !newer {
		w.pending[id] = st
	}
}

// Pending returns the number of snapshots waiting to be written.
func (w *Writer) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}
