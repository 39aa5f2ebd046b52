package call

import (
	"log/slog"
	"strconv"
	"sync"
	"time"

	"lingocall/internal/ports"
)

const (
	durationKeyPrefix  = "call-duration-"
	startTimeKeyPrefix = "call-start-time-"
)

// durationTimer tracks elapsed call seconds and persists them every second,
// keyed by call id, so a restart mid-call resumes the correct elapsed time.
type durationTimer struct {
	store  ports.KeyValue
	events ports.EventSink
	logger *slog.Logger
	callID string
	now    func() time.Time

	start time.Time

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// startDurationTimer resumes from a persisted start time when one exists,
// otherwise records now as the start of the call.
func startDurationTimer(store ports.KeyValue, events ports.EventSink, logger *slog.Logger, callID string, now func() time.Time) *durationTimer {
	if now == nil {
		now = time.Now
	}
	t := &durationTimer{
		store:  store,
		events: events,
		logger: logger,
		callID: callID,
		now:    now,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	t.start = t.now()
	if raw, ok, err := store.Get(startTimeKeyPrefix + callID); err != nil {
		logger.Warn("failed to read persisted call start", "call", callID, "error", err)
	} else if ok {
		if unix, parseErr := strconv.ParseInt(raw, 10, 64); parseErr == nil {
			t.start = time.Unix(unix, 0)
		}
	}
	if err := store.Set(startTimeKeyPrefix+callID, strconv.FormatInt(t.start.Unix(), 10)); err != nil {
		logger.Warn("failed to persist call start", "call", callID, "error", err)
	}

	t.tick()
	go t.run()
	return t
}

// Elapsed returns whole seconds since the (possibly resumed) call start.
func (t *durationTimer) Elapsed() int {
	return int(t.now().Sub(t.start).Seconds())
}

// Stop halts the timer and removes both persisted keys.
func (t *durationTimer) Stop() {
	t.stopOnce.Do(func() {
		close(t.stop)
		<-t.done

		if err := t.store.Delete(durationKeyPrefix + t.callID); err != nil {
			t.logger.Warn("failed to remove persisted duration", "call", t.callID, "error", err)
		}
		if err := t.store.Delete(startTimeKeyPrefix + t.callID); err != nil {
			t.logger.Warn("failed to remove persisted start", "call", t.callID, "error", err)
		}
	})
}

func (t *durationTimer) run() {
	defer close(t.done)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			t.tick()
		}
	}
}

func (t *durationTimer) tick() {
	elapsed := t.Elapsed()
	if err := t.store.Set(durationKeyPrefix+t.callID, strconv.Itoa(elapsed)); err != nil {
		t.logger.Warn("failed to persist call duration", "call", t.callID, "error", err)
	}
	t.events.CallDuration(t.callID, elapsed)
}
