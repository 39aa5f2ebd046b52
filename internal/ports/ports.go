package ports

import (
	"context"
	"encoding/json"
	"io"

	"lingocall/internal/domain"
)

// AudioConfig describes how a capture source should be opened.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	BlockSize   int
	InputFormat string
	InputDevice string
}

// AudioSession is a live capture session delivering raw float32 PCM bytes.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// SignalChannel is the shared event channel owned by the call transport.
// Subsystems multiplex over it by event name; they attach and detach their
// own listeners, never replace the channel.
type SignalChannel interface {
	Connected() bool
	Emit(event string, payload any) error
	// EmitAudioChunk frames one PCM16 buffer for the room as a single
	// binary message.
	EmitAudioChunk(roomID string, pcm []byte) error
	// On registers a handler and returns its detach function. Handlers
	// run on the channel's read loop, in arrival order.
	On(event string, handler func(payload json.RawMessage)) (off func())
}

// Player renders an open-ended stream of PCM16 chunks seamlessly.
type Player interface {
	Add16BitPCM(samples []int16, chunkID string)
	// ResumeIfSuspended recovers a suspended output device before the
	// next chunk is rendered.
	ResumeIfSuspended()
}

// RemoteAudio mutes or restores the remote participant's raw audio.
type RemoteAudio interface {
	SetMuted(muted bool)
}

// CallDirectory fetches call entitlement details.
type CallDirectory interface {
	Details(ctx context.Context, callID string) (domain.CallDetails, error)
}

// KeyValue is durable local storage for small per-call bookkeeping.
type KeyValue interface {
	Set(key, value string) error
	Get(key string) (string, bool, error)
	Delete(key string) error
}

// Clipboard writes text into the system clipboard.
type Clipboard interface {
	SetText(ctx context.Context, text string) error
}

// EventSink emits backend state/events to the UI.
type EventSink interface {
	TranslationStateChanged(state domain.SessionState, reason domain.SessionStateReason)
	TranslationText(result domain.TranslationResult)
	TranslationError(code domain.ErrorCode, detail string)
	PeerTranslationChanged(userName string, enabled bool)
	CallDuration(callID string, seconds int)
	LanguagePrompt(callID string)
}
