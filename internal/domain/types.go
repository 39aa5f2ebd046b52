package domain

// SessionState models the translation session lifecycle.
type SessionState string

const (
	SessionStateIdle     SessionState = "idle"
	SessionStateStarting SessionState = "starting"
	SessionStateActive   SessionState = "active"
	SessionStateStopping SessionState = "stopping"
	SessionStateError    SessionState = "error"
)

// SessionStateReason provides a structured reason for state transitions.
type SessionStateReason string

const (
	SessionReasonChannelReady       SessionStateReason = "channel_ready"
	SessionReasonHandshakeStarted   SessionStateReason = "handshake_started"
	SessionReasonTranslationStarted SessionStateReason = "translation_started"
	SessionReasonTranslationStopped SessionStateReason = "translation_stopped"
	SessionReasonServerDisabled     SessionStateReason = "server_disabled"
	SessionReasonHandshakeTimeout   SessionStateReason = "handshake_timeout"
	SessionReasonBackendError       SessionStateReason = "backend_error"
	SessionReasonCaptureFailed      SessionStateReason = "capture_failed"
)

// ErrorCode identifies non-fatal and fatal errors surfaced to the UI.
type ErrorCode string

const (
	ErrorCodeStartup    ErrorCode = "startup"
	ErrorCodeHandshake  ErrorCode = "handshake"
	ErrorCodeBackend    ErrorCode = "backend"
	ErrorCodeCapture    ErrorCode = "capture"
	ErrorCodePlayback   ErrorCode = "playback"
	ErrorCodeValidation ErrorCode = "validation"
	ErrorCodeDetails    ErrorCode = "call_details"
	ErrorCodeClipboard  ErrorCode = "clipboard"
)

// TranslationType selects the translation direction. Only one-way translation
// is exercised today; two-way is accepted but reserved.
type TranslationType string

const (
	TranslationOneWay TranslationType = "one_way"
	TranslationTwoWay TranslationType = "two_way"
)

// TranslationConfig describes one translation session for a call room.
type TranslationConfig struct {
	RoomID          string          `json:"roomId"`
	CallID          string          `json:"callId"`
	TargetLanguage  string          `json:"targetLanguage"`
	SourceLanguage  string          `json:"sourceLanguage"`
	TranslationType TranslationType `json:"translationType"`
	TTSVoice        string          `json:"ttsVoice,omitempty"`
}

// TranslationResult is one incremental recognition/translation update. The
// latest result replaces the previously displayed text; no history is kept.
type TranslationResult struct {
	Transcript  string `json:"transcript"`
	Translation string `json:"translation"`
	IsFinal     bool   `json:"isFinal"`
	Speaker     string `json:"speaker,omitempty"`
	Language    string `json:"language,omitempty"`
}

// TranslationError is the backend-reported error payload.
type TranslationError struct {
	Status  int    `json:"status,omitempty"`
	Message string `json:"message"`
}

// CallDetails is the entitlement record fetched once per call.
type CallDetails struct {
	CallID              string `json:"callId"`
	RealtimeTranslation bool   `json:"realtimeTranslation"`
	PeerName            string `json:"peerName,omitempty"`
}

// Status summarizes the current translation session status.
type Status struct {
	State       SessionState `json:"state"`
	Translating bool         `json:"translating"`
	Transcript  string       `json:"transcript"`
	Translation string       `json:"translation"`
	Message     string       `json:"message,omitempty"`
}

// Signaling event names, shared by both directions of the channel.
const (
	EventEnableTranslation      = "enable-translation"
	EventTranslationAudioChunk  = "translation-audio-chunk"
	EventTranslationFinalize    = "translation-finalize"
	EventDisableTranslation     = "disable-translation"
	EventTranslationEnabled     = "translation-enabled"
	EventTranslationError       = "translation-error"
	EventTranslationResult      = "translation-result"
	EventTranslationAudio       = "translation-audio"
	EventTranslationDisabled    = "translation-disabled"
	EventUserTranslationEnabled = "user-translation-enabled"
	EventUserTranslationDisable = "user-translation-disabled"
)

// EnableTranslationPayload is emitted to request a translation session.
type EnableTranslationPayload struct {
	RoomID              string          `json:"roomId"`
	CallID              string          `json:"callId"`
	TargetLanguage      string          `json:"targetLanguage"`
	SourceLanguage      string          `json:"sourceLanguage"`
	TranslationType     TranslationType `json:"translationType"`
	TTSVoice            string          `json:"ttsVoice,omitempty"`
	IsTranslatingRemote bool            `json:"isTranslatingRemote"`
}

// RoomPayload scopes an event to a call room.
type RoomPayload struct {
	RoomID string `json:"roomId"`
}

// PeerTranslationPayload accompanies user-translation-enabled/-disabled.
type PeerTranslationPayload struct {
	UserName string `json:"userName"`
}
