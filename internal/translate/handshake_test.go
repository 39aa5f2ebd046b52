package translate

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"lingocall/internal/domain"
)

func TestWatchEnabledArmsListenersImmediately(t *testing.T) {
	t.Parallel()

	ch := newFakeChannel()
	w := watchEnabled(ch)
	defer w.detach()

	if got := ch.handlerCount(domain.EventTranslationEnabled); got != 1 {
		t.Fatalf("expected enabled listener armed on watch, got %d", got)
	}
	if got := ch.handlerCount(domain.EventTranslationError); got != 1 {
		t.Fatalf("expected error listener armed on watch, got %d", got)
	}
}

func TestWatchEnabledResolvesOnConfirmation(t *testing.T) {
	t.Parallel()

	ch := newFakeChannel()
	w := watchEnabled(ch)

	// Confirmation can land before wait is even entered; the armed
	// listener must still capture it.
	ch.dispatch(domain.EventTranslationEnabled, nil)

	if err := w.wait(2 * time.Second); err != nil {
		t.Fatalf("expected confirmation, got %v", err)
	}
	if got := ch.handlerCount(domain.EventTranslationEnabled); got != 0 {
		t.Fatalf("expected enabled listener to be detached, got %d", got)
	}
	if got := ch.handlerCount(domain.EventTranslationError); got != 0 {
		t.Fatalf("expected error listener to be detached, got %d", got)
	}
}

func TestWatchEnabledResolvesOnRejection(t *testing.T) {
	t.Parallel()

	ch := newFakeChannel()
	w := watchEnabled(ch)
	ch.dispatch(domain.EventTranslationError, json.RawMessage(`{"message":"no capacity"}`))

	err := w.wait(2 * time.Second)
	if err == nil || err.Error() != "no capacity" {
		t.Fatalf("expected rejection message, got %v", err)
	}
}

func TestWatchEnabledRejectionWithoutMessage(t *testing.T) {
	t.Parallel()

	ch := newFakeChannel()
	w := watchEnabled(ch)
	ch.dispatch(domain.EventTranslationError, json.RawMessage(`{}`))

	if err := w.wait(2 * time.Second); err == nil {
		t.Fatalf("expected rejection error")
	}
}

func TestWatchEnabledTimesOut(t *testing.T) {
	t.Parallel()

	ch := newFakeChannel()
	w := watchEnabled(ch)

	err := w.wait(20 * time.Millisecond)
	if !errors.Is(err, ErrHandshakeTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if got := ch.handlerCount(domain.EventTranslationEnabled); got != 0 {
		t.Fatalf("expected listeners to be detached after timeout, got %d", got)
	}
}

func TestWatchEnabledFirstOutcomeWins(t *testing.T) {
	t.Parallel()

	ch := newFakeChannel()
	w := watchEnabled(ch)
	ch.dispatch(domain.EventTranslationEnabled, nil)
	ch.dispatch(domain.EventTranslationError, json.RawMessage(`{"message":"late failure"}`))

	if err := w.wait(2 * time.Second); err != nil {
		t.Fatalf("expected the confirmation to win, got %v", err)
	}
}
