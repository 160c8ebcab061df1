package dispatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"autoquote/internal/email/models"
	"autoquote/internal/email/store"
)

type fakeSender struct {
	failFor map[string]error
	sent    int
}

func (f *fakeSender) Send(_ context.Context, to []string, _ string, _ string) error {
	if len(to) > 0 {
		if err, ok := f.failFor[to[0]]; ok {
			return err
		}
	}
	f.sent++
	return nil
}

func seed(t *testing.T, st *store.InMemoryStore, to string, scheduledFor time.Time) uuid.UUID {
	t.Helper()
	email := &models.ScheduledEmail{
		ID:           uuid.New(),
		To:           []string{to},
		Subject:      "Reminder",
		HTML:         "<p>Hi</p>",
		ScheduledFor: scheduledFor,
		Status:       models.ScheduledStatusPending,
	}
	if err := st.Create(context.Background(), email); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return email.ID
}

func newWorker(t *testing.T, st *store.InMemoryStore, sender *fakeSender, now time.Time) *Worker {
	t.Helper()
	w, err := New(st, sender,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time { return now }),
	)
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}
	return w
}

func TestRunOnceSendsOnlyDue(t *testing.T) {
	st := store.NewInMemory()
	sender := &fakeSender{}
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	dueID := seed(t, st, "due@example.com", now.Add(-time.Minute))
	futureID := seed(t, st, "future@example.com", now.Add(time.Hour))

	w := newWorker(t, st, sender, now)
	res, err := w.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Sent != 1 || res.Failed != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}

	due, _ := st.Find(dueID)
	if due.Status != models.ScheduledStatusSent || due.SentAt == nil {
		t.Fatalf("due email not marked sent: %+v", due)
	}
	future, _ := st.Find(futureID)
	if future.Status != models.ScheduledStatusPending {
		t.Fatalf("future email should still be pending: %+v", future)
	}
}

func TestRunOnceFailureDoesNotBlockBatch(t *testing.T) {
	st := store.NewInMemory()
	sender := &fakeSender{failFor: map[string]error{
		"broken@example.com": errors.New("provider returned 500"),
	}}
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	brokenID := seed(t, st, "broken@example.com", now.Add(-2*time.Minute))
	okID := seed(t, st, "ok@example.com", now.Add(-time.Minute))

	w := newWorker(t, st, sender, now)
	res, err := w.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Sent != 1 || res.Failed != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}

	broken, _ := st.Find(brokenID)
	if broken.Status != models.ScheduledStatusFailed || broken.LastError == "" {
		t.Fatalf("broken email not marked failed: %+v", broken)
	}
	ok, _ := st.Find(okID)
	if ok.Status != models.ScheduledStatusSent {
		t.Fatalf("ok email not marked sent: %+v", ok)
	}
}

func TestStartStopsOnContextCancel(t *testing.T) {
	st := store.NewInMemory()
	w := newWorker(t, st, &fakeSender{}, time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
