// Package translate orchestrates the real-time speech translation session
// layered on a call: the enable/disable handshake with the translation
// backend, the capture graph feeding PCM16 frames onto the signal channel,
// and the inbound transcript/translation/audio events.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"lingocall/internal/audio"
	"lingocall/internal/domain"
	"lingocall/internal/ports"
)

// Config controls session behavior.
type Config struct {
	HandshakeTimeout time.Duration
	Capture          ports.AudioConfig
}

// Session is the translation session state machine. Lifecycle is one call:
// attach once, start/stop as the user toggles, detach when the call ends.
type Session struct {
	channel  ports.SignalChannel
	capture  ports.AudioCapture
	player   ports.Player
	logger   *slog.Logger
	cfg      Config
	handlers Handlers

	mu          sync.Mutex
	state       domain.SessionState
	active      *activeStream
	transcript  string
	translation string
	offs        []func()
}

func NewSession(
	channel ports.SignalChannel,
	capture ports.AudioCapture,
	player ports.Player,
	logger *slog.Logger,
	cfg Config,
	handlers Handlers,
) *Session {
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 5 * time.Second
	}
	if cfg.Capture.BlockSize <= 0 {
		cfg.Capture.BlockSize = 4096
	}
	if cfg.Capture.SampleRate <= 0 {
		cfg.Capture.SampleRate = 16000
	}
	if cfg.Capture.Channels <= 0 {
		cfg.Capture.Channels = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		channel:  channel,
		capture:  capture,
		player:   player,
		logger:   logger,
		cfg:      cfg,
		handlers: handlers,
		state:    domain.SessionStateIdle,
	}
}

// Attach subscribes the session's inbound event handlers. They stay
// registered until Detach.
func (s *Session) Attach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.offs) > 0 {
		return
	}
	s.offs = []func(){
		s.channel.On(domain.EventTranslationResult, s.onResult),
		s.channel.On(domain.EventTranslationAudio, s.onAudio),
		s.channel.On(domain.EventTranslationError, s.onError),
		s.channel.On(domain.EventTranslationDisabled, s.onDisabled),
		s.channel.On(domain.EventUserTranslationEnabled, s.onPeerEnabled),
		s.channel.On(domain.EventUserTranslationDisable, s.onPeerDisabled),
	}
}

// Detach removes the inbound handlers and stops an active session, so no
// microphone or playback resource outlives the call screen.
func (s *Session) Detach() {
	s.Stop()

	s.mu.Lock()
	offs := s.offs
	s.offs = nil
	s.mu.Unlock()

	for _, off := range offs {
		off()
	}
}

// Start runs the enable handshake and, only after confirmation, wires the
// capture graph so frames begin to flow. remote, when non-nil, is the other
// participant's audio stream; its lifecycle stays with the caller. When
// remote is nil the local microphone is acquired and owned by the session.
//
// Guard conditions (channel missing or disconnected, session already
// running) are no-ops with a logged warning, not errors.
func (s *Session) Start(ctx context.Context, cfg domain.TranslationConfig, remote io.Reader) error {
	if s.channel == nil {
		s.logger.Warn("translation start skipped: no signal channel")
		return nil
	}
	if !s.channel.Connected() {
		s.logger.Warn("translation start skipped: signal channel not connected", "room", cfg.RoomID)
		return nil
	}

	s.mu.Lock()
	if s.state != domain.SessionStateIdle {
		state := s.state
		s.mu.Unlock()
		s.logger.Warn("translation start skipped: session already running", "state", string(state))
		return nil
	}
	s.state = domain.SessionStateStarting
	s.mu.Unlock()

	if s.player != nil {
		s.player.ResumeIfSuspended()
	}

	graph, err := audio.OpenGraph(ctx, s.capture, remote, s.cfg.Capture)
	if err != nil {
		s.setIdle(true)
		return fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}

	payload := domain.EnableTranslationPayload{
		RoomID:              cfg.RoomID,
		CallID:              cfg.CallID,
		TargetLanguage:      cfg.TargetLanguage,
		SourceLanguage:      cfg.SourceLanguage,
		TranslationType:     cfg.TranslationType,
		TTSVoice:            cfg.TTSVoice,
		IsTranslatingRemote: remote != nil,
	}
	// Arm the outcome listeners before the enable request goes out. The
	// channel's read loop dispatches concurrently, and an early confirmation
	// must not slip past the handshake.
	waiter := watchEnabled(s.channel)
	if err := s.channel.Emit(domain.EventEnableTranslation, payload); err != nil {
		waiter.detach()
		_ = graph.Close()
		s.setIdle(true)
		return fmt.Errorf("enable request failed: %w", err)
	}

	// The backend must allocate the session context before any audio
	// arrives, so confirmation gates the frame pump.
	if err := waiter.wait(s.cfg.HandshakeTimeout); err != nil {
		_ = graph.Close()
		s.setIdle(true)
		return fmt.Errorf("translation enable failed: %w", err)
	}

	pumpCtx, cancel := context.WithCancel(context.Background())
	active := &activeStream{
		roomID: cfg.RoomID,
		graph:  graph,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	s.mu.Lock()
	s.state = domain.SessionStateActive
	s.active = active
	s.mu.Unlock()

	go s.pump(pumpCtx, active)
	s.logger.Info("translation session active",
		"room", cfg.RoomID,
		"source", cfg.SourceLanguage,
		"target", cfg.TargetLanguage,
		"remote", remote != nil)
	return nil
}

// Stop tears down an active session: capture first, then a finalize signal
// to flush any in-flight partial transcript, then the disable event. It is
// a no-op when the session is not active.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.state != domain.SessionStateActive {
		s.mu.Unlock()
		return
	}
	s.state = domain.SessionStateStopping
	active := s.active
	s.active = nil
	s.mu.Unlock()

	s.teardownStream(active)

	if err := s.channel.Emit(domain.EventTranslationFinalize, nil); err != nil {
		s.logger.Warn("finalize signal failed", "error", err)
	}
	if err := s.channel.Emit(domain.EventDisableTranslation, domain.RoomPayload{RoomID: active.roomID}); err != nil {
		s.logger.Warn("disable request failed", "error", err)
	}

	s.setIdle(true)
}

// Translating reports whether the session is active.
func (s *Session) Translating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == domain.SessionStateActive
}

// CurrentText returns the latest transcript and translation.
func (s *Session) CurrentText() (transcript, translation string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript, s.translation
}

// Status summarizes the session for the UI.
func (s *Session) Status() domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Status{
		State:       s.state,
		Translating: s.state == domain.SessionStateActive,
		Transcript:  s.transcript,
		Translation: s.translation,
	}
}

func (s *Session) pump(ctx context.Context, active *activeStream) {
	defer close(active.done)

	// NextBlock is a plain blocking read with no context hook. A remote
	// stream the session does not own can stall indefinitely, and teardown
	// must still complete, so the reads run on their own goroutine and the
	// pump selects against cancellation.
	blocks := make(chan []int16)
	go func() {
		defer close(blocks)
		for {
			block, err := active.graph.NextBlock()
			if err != nil {
				if ctx.Err() == nil && err != io.EOF {
					s.logger.Warn("capture stream ended", "error", err)
				}
				return
			}
			select {
			case blocks <- block:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case block, ok := <-blocks:
			if !ok {
				return
			}
			// Live and lossy: a frame that cannot be sent right now is
			// dropped, never buffered.
			if !s.channel.Connected() {
				continue
			}
			if err := s.channel.EmitAudioChunk(active.roomID, audio.Int16ToBytes(block)); err != nil {
				s.logger.Warn("audio chunk send failed", "error", err)
			}
		}
	}
}

func (s *Session) teardownStream(active *activeStream) {
	if active == nil {
		return
	}
	active.cancel()
	if err := active.graph.Close(); err != nil {
		s.logger.Warn("capture teardown failed", "error", err)
	}
	<-active.done
}

func (s *Session) setIdle(clearText bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.SessionStateIdle
	if clearText {
		s.transcript = ""
		s.translation = ""
	}
}

// forceIdle handles server-initiated teardown: backend errors and
// translation-disabled notices collapse an active session back to idle. It
// reports whether a session was actually torn down; during the handshake
// the outcome belongs to Start's waiter and the caller must stay quiet.
func (s *Session) forceIdle() bool {
	s.mu.Lock()
	if s.state != domain.SessionStateActive {
		s.mu.Unlock()
		return false
	}
	s.state = domain.SessionStateStopping
	active := s.active
	s.active = nil
	s.mu.Unlock()

	s.teardownStream(active)
	s.setIdle(true)
	return true
}

func (s *Session) onResult(raw json.RawMessage) {
	var result domain.TranslationResult
	if err := json.Unmarshal(raw, &result); err != nil {
		s.logger.Warn("dropping malformed translation result", "error", err)
		return
	}

	s.mu.Lock()
	s.transcript = result.Transcript
	s.translation = result.Translation
	s.mu.Unlock()

	s.handlers.result(result)
}

func (s *Session) onAudio(raw json.RawMessage) {
	var event audioEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		s.logger.Warn("dropping malformed translation audio event", "error", err)
		return
	}

	samples, err := normalizeAudio(event.Audio)
	if err != nil {
		s.logger.Warn("dropping translation audio payload", "from", event.FromUserName, "error", err)
		return
	}
	if s.player != nil {
		s.player.Add16BitPCM(samples, uuid.NewString())
	}
}

func (s *Session) onError(raw json.RawMessage) {
	var terr domain.TranslationError
	if err := json.Unmarshal(raw, &terr); err != nil || terr.Message == "" {
		terr.Message = "translation service reported an error"
	}

	if !s.forceIdle() {
		s.logger.Debug("translation error outside an active session", "status", terr.Status, "message", terr.Message)
		return
	}
	s.logger.Warn("translation backend error", "status", terr.Status, "message", terr.Message)
	s.handlers.fail(terr)
}

func (s *Session) onDisabled(json.RawMessage) {
	if !s.forceIdle() {
		return
	}
	s.logger.Info("translation disabled by server")
	s.handlers.disabled()
}

func (s *Session) onPeerEnabled(raw json.RawMessage) {
	s.handlers.peer(peerName(raw), true)
}

func (s *Session) onPeerDisabled(raw json.RawMessage) {
	s.handlers.peer(peerName(raw), false)
}

func peerName(raw json.RawMessage) string {
	var payload domain.PeerTranslationPayload
	_ = json.Unmarshal(raw, &payload)
	return payload.UserName
}
