package translate

import (
	"lingocall/internal/audio"
	"lingocall/internal/domain"
)

// Handlers are the caller's callbacks. All are optional; the session never
// panics on a nil handler.
type Handlers struct {
	OnResult   func(result domain.TranslationResult)
	OnError    func(err domain.TranslationError)
	OnDisabled func()
	OnPeer     func(userName string, enabled bool)
}

func (h Handlers) result(r domain.TranslationResult) {
	if h.OnResult != nil {
		h.OnResult(r)
	}
}

func (h Handlers) fail(err domain.TranslationError) {
	if h.OnError != nil {
		h.OnError(err)
	}
}

func (h Handlers) disabled() {
	if h.OnDisabled != nil {
		h.OnDisabled()
	}
}

func (h Handlers) peer(userName string, enabled bool) {
	if h.OnPeer != nil {
		h.OnPeer(userName, enabled)
	}
}

// activeStream is one confirmed translation session's capture wiring.
type activeStream struct {
	roomID string
	graph  *audio.Graph
	cancel func()
	done   chan struct{}
}
