package heartbeat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"signage/internal/models"
)

type fakeSender struct {
	mu    sync.Mutex
	sends []time.Time
	err   error
}

func (f *fakeSender) SendHeartbeat(ctx context.Context, screenID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, at)
	return f.err
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sends)
}

func (f *fakeSender) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func runReporter(t *testing.T, r *Reporter) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = r.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Error("reporter did not stop after cancel")
		}
	})
	return cancel
}

func TestReporterSendsImmediatelyAndOnInterval(t *testing.T) {
	sender := &fakeSender{}
	r := NewReporter("screen-1", sender, 25*time.Millisecond)
	runReporter(t, r)

	deadline := time.Now().Add(time.Second)
	for sender.count() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := sender.count(); got < 3 {
		t.Fatalf("expected at least 3 heartbeats (1 immediate + ticks), got %d", got)
	}
}

func TestReporterSurvivesSendFailures(t *testing.T) {
	sender := &fakeSender{}
	sender.setErr(errors.New("store unreachable"))
	r := NewReporter("screen-1", sender, 20*time.Millisecond)
	runReporter(t, r)

	deadline := time.Now().Add(time.Second)
	for sender.count() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := sender.count(); got < 3 {
		t.Fatalf("failures must not stop the schedule, got %d attempts", got)
	}

	// Once the store is back, the next tick succeeds with no catch-up burst.
	before := sender.count()
	sender.setErr(nil)
	time.Sleep(50 * time.Millisecond)
	after := sender.count()
	if after-before > 4 {
		t.Fatalf("expected steady cadence after recovery, got %d sends in 50ms", after-before)
	}
}

func TestOfflineClassificationByReader(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	threshold := OfflineThreshold(DefaultInterval)

	fresh := now.Add(-30 * time.Second)
	stale := now.Add(-5 * time.Minute)

	online := &models.Screen{LastHeartbeat: &fresh}
	offline := &models.Screen{LastHeartbeat: &stale}
	never := &models.Screen{}

	if !online.OnlineAt(now, threshold) {
		t.Fatal("screen with a fresh heartbeat should read as online")
	}
	if offline.OnlineAt(now, threshold) {
		t.Fatal("screen silent for >2 intervals should read as offline")
	}
	if never.OnlineAt(now, threshold) {
		t.Fatal("screen that never reported should read as offline")
	}
}
