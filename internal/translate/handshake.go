package translate

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"lingocall/internal/domain"
	"lingocall/internal/ports"
)

// ErrHandshakeTimeout is returned when the backend never confirms the
// enable request.
var ErrHandshakeTimeout = errors.New("translation service did not confirm within the handshake window")

// ErrCaptureFailed wraps audio source acquisition failures.
var ErrCaptureFailed = errors.New("capture setup failed")

// enableWaiter observes the enable handshake outcome. It must be armed
// before the enable request is emitted: the channel's read loop dispatches
// concurrently, so a confirmation can land between the emit and a later
// registration and would be lost.
type enableWaiter struct {
	result     chan error
	offEnabled func()
	offError   func()
}

// watchEnabled registers one-shot listeners for translation-enabled and
// translation-error. Only the first outcome wins.
func watchEnabled(channel ports.SignalChannel) *enableWaiter {
	w := &enableWaiter{result: make(chan error, 1)}

	var once sync.Once
	resolve := func(err error) {
		once.Do(func() { w.result <- err })
	}

	w.offEnabled = channel.On(domain.EventTranslationEnabled, func(json.RawMessage) {
		resolve(nil)
	})
	w.offError = channel.On(domain.EventTranslationError, func(raw json.RawMessage) {
		var terr domain.TranslationError
		_ = json.Unmarshal(raw, &terr)
		if terr.Message == "" {
			terr.Message = "translation enable request rejected"
		}
		resolve(errors.New(terr.Message))
	})
	return w
}

// detach removes both listeners. Idempotent.
func (w *enableWaiter) detach() {
	w.offEnabled()
	w.offError()
}

// wait blocks for the handshake outcome, bounded by timeout. The listeners
// and the timer are detached on every path.
func (w *enableWaiter) wait(timeout time.Duration) error {
	defer w.detach()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-w.result:
		return err
	case <-timer.C:
		return ErrHandshakeTimeout
	}
}
