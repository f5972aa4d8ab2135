// internal/historian/historian.go
//
// Package historian drains finished matches from the Redis queue and archives them to
// PostgreSQL in batches.
package historian

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/walejandromt/KicksEmu/internal/models"
)

// Source yields queued match records. Pop reports ok=false when nothing arrived
// within timeout.
type Source interface {
	Pop(ctx context.Context, timeout time.Duration) (models.MatchRecord, bool, error)
}

// Sink persists a batch of records. Archiving the same record twice must be harmless.
type Sink interface {
	Archive(ctx context.Context, recs []models.MatchRecord) error
}

// DeadLetter receives records that could not be archived.
type DeadLetter interface {
	PublishMatch(ctx context.Context, rec models.MatchRecord) error
}

type Options struct {
	BatchSize  int
	FlushDelay time.Duration
	// PopTimeout bounds each blocking read so flushes and shutdown are not delayed.
	PopTimeout time.Duration
	// MaxAttempts is how often a batch is tried before it is dead-lettered.
	MaxAttempts int
	// RetryDelay is the wait after the first failed attempt. It doubles with every
	// further failure up to MaxRetryDelay.
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
}

// Historian batches records from a Source into a Sink. It is driven by Run from a
// single goroutine. A batch never grows past BatchSize: while a full batch is waiting
// to be retried nothing more is popped.
type Historian struct {
	src  Source
	sink Sink
	opts Options
	log  logrus.FieldLogger

	// DeadLetter, if set, receives batches that exhausted their attempts.
	DeadLetter DeadLetter

	batch     []models.MatchRecord
	lastFlush time.Time
	failures  int
	retryAt   time.Time
}

func New(src Source, sink Sink, opts Options, log logrus.FieldLogger) *Historian {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	if opts.FlushDelay <= 0 {
		opts.FlushDelay = 500 * time.Millisecond
	}
	if opts.PopTimeout <= 0 {
		opts.PopTimeout = time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	if opts.MaxRetryDelay < opts.RetryDelay {
		opts.MaxRetryDelay = 30 * opts.RetryDelay
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Historian{
		src:   src,
		sink:  sink,
		opts:  opts,
		log:   log,
		batch: make([]models.MatchRecord, 0, opts.BatchSize),
	}
}

// Run pops records until ctx is cancelled, flushing whenever the batch is full or the
// flush delay has passed. Whatever is still batched is flushed, or dead-lettered, before
// it returns.
func (h *Historian) Run(ctx context.Context) {
	h.log.WithFields(logrus.Fields{
		"batch_size":   h.opts.BatchSize,
		"flush_delay":  h.opts.FlushDelay,
		"max_attempts": h.opts.MaxAttempts,
	}).Info("historian started")
	h.lastFlush = time.Now()

	for ctx.Err() == nil {
		if len(h.batch) >= h.opts.BatchSize {
			sleep(ctx, time.Until(h.retryAt))
			if ctx.Err() == nil {
				h.Flush(ctx)
			}
			continue
		}
		rec, ok, err := h.src.Pop(ctx, h.opts.PopTimeout)
		switch {
		case err != nil && ctx.Err() == nil:
			h.log.WithError(err).Error("failed to pop match record")
		case ok:
			h.batch = append(h.batch, rec)
		}
		due := len(h.batch) >= h.opts.BatchSize || time.Since(h.lastFlush) >= h.opts.FlushDelay
		if due && !time.Now().Before(h.retryAt) {
			h.Flush(ctx)
		}
	}

	// The run context is gone; give the last flush its own deadline.
	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	h.Flush(flushCtx)
	if len(h.batch) > 0 {
		h.deadLetter(flushCtx)
		h.reset()
	}
	h.log.Info("historian stopped")
}

// Flush archives the pending batch. A failed batch is kept and retried after a backoff
// until MaxAttempts is reached, then it is dead-lettered and dropped.
func (h *Historian) Flush(ctx context.Context) {
	h.lastFlush = time.Now()
	if len(h.batch) == 0 {
		return
	}
	if err := h.sink.Archive(ctx, h.batch); err != nil {
		h.failures++
		log := h.log.WithError(err).WithFields(logrus.Fields{
			"pending": len(h.batch),
			"attempt": h.failures,
		})
		if h.failures >= h.opts.MaxAttempts {
			log.Error("giving up on match batch")
			h.deadLetter(ctx)
			h.reset()
			return
		}
		h.retryAt = time.Now().Add(h.backoff())
		log.Error("failed to archive matches")
		return
	}
	h.log.WithField("count", len(h.batch)).Debug("archived matches")
	h.reset()
}

// Pending is the number of records not archived yet.
func (h *Historian) Pending() int { return len(h.batch) }

func (h *Historian) reset() {
	h.batch = make([]models.MatchRecord, 0, h.opts.BatchSize)
	h.failures = 0
	h.retryAt = time.Time{}
}

func (h *Historian) backoff() time.Duration {
	d := h.opts.RetryDelay
	for i := 1; i < h.failures && d < h.opts.MaxRetryDelay; i++ {
		d *= 2
	}
	return min(d, h.opts.MaxRetryDelay)
}

func (h *Historian) deadLetter(ctx context.Context) {
	if h.DeadLetter == nil {
		h.log.WithField("count", len(h.batch)).Warn("dropping unarchived matches")
		return
	}
	for _, rec := range h.batch {
		if err := h.DeadLetter.PublishMatch(ctx, rec); err != nil {
			h.log.WithError(err).WithField("match", rec.MatchID).Error("failed to dead-letter match")
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
