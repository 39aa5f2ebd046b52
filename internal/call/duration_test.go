package call

import (
	"log/slog"
	"strconv"
	"testing"
	"time"
)

func TestDurationTimerStartsFromNow(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	events := &fakeEvents{}
	start := time.Unix(1_700_000_000, 0)

	timer := startDurationTimer(store, events, slog.Default(), "c1", func() time.Time { return start })
	defer timer.Stop()

	if got := timer.Elapsed(); got != 0 {
		t.Fatalf("expected zero elapsed, got %d", got)
	}
	raw, ok, err := store.Get("call-start-time-c1")
	if err != nil || !ok {
		t.Fatalf("expected persisted start, got ok=%v err=%v", ok, err)
	}
	if raw != strconv.FormatInt(start.Unix(), 10) {
		t.Fatalf("unexpected persisted start: %q", raw)
	}

	events.mu.Lock()
	defer events.mu.Unlock()
	if len(events.durations) == 0 || events.durations[0] != 0 {
		t.Fatalf("expected an immediate duration event, got %v", events.durations)
	}
}

func TestDurationTimerResumesPersistedStart(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	events := &fakeEvents{}
	now := time.Unix(1_700_000_090, 0)
	_ = store.Set("call-start-time-c1", strconv.FormatInt(now.Add(-90*time.Second).Unix(), 10))

	timer := startDurationTimer(store, events, slog.Default(), "c1", func() time.Time { return now })
	defer timer.Stop()

	if got := timer.Elapsed(); got != 90 {
		t.Fatalf("expected 90 elapsed seconds after resume, got %d", got)
	}

	raw, ok, _ := store.Get("call-duration-c1")
	if !ok || raw != "90" {
		t.Fatalf("expected persisted duration 90, got %q ok=%v", raw, ok)
	}
}

func TestDurationTimerIgnoresCorruptPersistedStart(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	events := &fakeEvents{}
	now := time.Unix(1_700_000_000, 0)
	_ = store.Set("call-start-time-c1", "not-a-number")

	timer := startDurationTimer(store, events, slog.Default(), "c1", func() time.Time { return now })
	defer timer.Stop()

	if got := timer.Elapsed(); got != 0 {
		t.Fatalf("corrupt start must fall back to now, got %d", got)
	}
}

func TestDurationTimerStopClearsKeysOnce(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	events := &fakeEvents{}
	timer := startDurationTimer(store, events, slog.Default(), "c1", nil)

	timer.Stop()
	timer.Stop()

	if store.has("call-start-time-c1") || store.has("call-duration-c1") {
		t.Fatalf("expected both keys to be removed")
	}
}
