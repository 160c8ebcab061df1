// Package dispatch delivers scheduled emails once they come due.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"autoquote/internal/email/provider"
	"autoquote/internal/email/store"
)

// Result summarizes a dispatch run.
type Result struct {
	Sent   int
	Failed int
}

// Worker periodically sends due scheduled emails.
type Worker struct {
	scheduled store.Store
	sender    provider.Sender
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures Worker.
type Option func(*Worker)

// WithInterval overrides the poll interval when greater than zero.
func WithInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

// WithBatchSize caps how many due emails one run picks up.
func WithBatchSize(size int) Option {
	return func(w *Worker) {
		if size > 0 {
			w.batchSize = size
		}
	}
}

// WithLogger overrides the logger used for dispatch errors.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithClock overrides the worker clock for tests.
func WithClock(now func() time.Time) Option {
	return func(w *Worker) {
		if now != nil {
			w.now = now
		}
	}
}

// New constructs a Worker with required collaborators and options applied.
func New(scheduled store.Store, sender provider.Sender, opts ...Option) (*Worker, error) {
	if scheduled == nil || sender == nil {
		return nil, fmt.Errorf("scheduled store and sender are required")
	}
	w := &Worker{
		scheduled: scheduled,
		sender:    sender,
		interval:  time.Minute,
		batchSize: 50,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

// Start runs dispatch periodically until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.logger.ErrorContext(ctx, "email dispatch failed", "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce sends one batch of due emails. A provider failure marks that record
// failed and moves on; one bad message never blocks the rest of the batch.
func (w *Worker) RunOnce(ctx context.Context) (Result, error) {
	var res Result
	due, err := w.scheduled.ListDue(ctx, w.now(), w.batchSize)
	if err != nil {
		return res, fmt.Errorf("list due emails: %w", err)
	}

	for _, email := range due {
		if err := w.sender.Send(ctx, email.To, email.Subject, email.HTML); err != nil {
			res.Failed++
			w.logger.ErrorContext(ctx, "scheduled email send failed",
				"email_id", email.ID.String(), "error", err)
			if markErr := w.scheduled.MarkFailed(ctx, email.ID, err.Error()); markErr != nil {
				w.logger.ErrorContext(ctx, "mark failed errored",
					"email_id", email.ID.String(), "error", markErr)
			}
			continue
		}
		res.Sent++
		if err := w.scheduled.MarkSent(ctx, email.ID, w.now()); err != nil {
			w.logger.ErrorContext(ctx, "mark sent errored",
				"email_id", email.ID.String(), "error", err)
		}
	}
	return res, nil
}
