// Package call implements the call screen integration: entitlement lookup,
// the one-time language prompt, source/target validation, remote audio
// muting, and call duration bookkeeping.
package call

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"lingocall/internal/domain"
	"lingocall/internal/languages"
	"lingocall/internal/ports"
	"lingocall/internal/translate"
)

// TranslationSession is the slice of translate.Session the screen drives.
type TranslationSession interface {
	Start(ctx context.Context, cfg domain.TranslationConfig, remote io.Reader) error
	Stop()
	Translating() bool
	Status() domain.Status
	Attach()
	Detach()
}

type tonePlayer interface {
	PlayMP3(r io.Reader) error
}

// Deps are the collaborators a screen is built from. NewSession late-binds
// the translation session to the screen's own event handlers.
type Deps struct {
	NewSession func(handlers translate.Handlers) TranslationSession
	Remote     ports.RemoteAudio
	Directory  ports.CallDirectory
	Store      ports.KeyValue
	Events     ports.EventSink
	Catalog    *languages.Catalog
	Logger     *slog.Logger

	// RemoteStream, when set, is the remote participant's audio tap used
	// as the capture source; its lifecycle stays with the call transport.
	RemoteStream io.Reader

	Tones           tonePlayer
	ConnectTonePath string

	TranslationType domain.TranslationType
	TTSVoice        string
}

// Screen owns the enabled flag and the TranslationConfig for one call. It is
// the only writer of enabled.
type Screen struct {
	deps    Deps
	session TranslationSession
	logger  *slog.Logger

	callID string
	roomID string

	mu             sync.Mutex
	enabled        bool
	promptShown    bool
	detailsFetched bool
	entitled       bool
	peerName       string
	translation    domain.TranslationConfig
	timer          *durationTimer
}

func NewScreen(deps Deps, callID, roomID string) *Screen {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.TranslationType == "" {
		deps.TranslationType = domain.TranslationOneWay
	}

	s := &Screen{
		deps:   deps,
		logger: deps.Logger,
		callID: callID,
		roomID: roomID,
		translation: domain.TranslationConfig{
			RoomID:          roomID,
			CallID:          callID,
			TranslationType: deps.TranslationType,
			TTSVoice:        deps.TTSVoice,
		},
	}
	s.session = deps.NewSession(translate.Handlers{
		OnResult:   s.onResult,
		OnError:    s.onSessionError,
		OnDisabled: s.onSessionDisabled,
		OnPeer:     s.onPeerTranslation,
	})
	s.session.Attach()
	return s
}

// PeerConnected runs once the peer connection reports connected. It starts
// the duration timer, fetches entitlement once per call, and opens the
// language prompt exactly once so reconnects never re-prompt.
func (s *Screen) PeerConnected(ctx context.Context) {
	s.mu.Lock()
	if s.timer == nil {
		s.timer = startDurationTimer(s.deps.Store, s.deps.Events, s.logger, s.callID, time.Now)
	}
	fetched := s.detailsFetched
	s.detailsFetched = true
	s.mu.Unlock()

	s.playConnectTone()

	if !fetched {
		details, err := s.deps.Directory.Details(ctx, s.callID)
		if err != nil {
			s.logger.Warn("call details lookup failed", "call", s.callID, "error", err)
			s.deps.Events.TranslationError(domain.ErrorCodeDetails, err.Error())
			return
		}
		s.mu.Lock()
		s.entitled = details.RealtimeTranslation
		s.peerName = details.PeerName
		s.mu.Unlock()
	}

	s.mu.Lock()
	prompt := s.entitled && !s.promptShown
	if prompt {
		s.promptShown = true
	}
	s.mu.Unlock()

	if prompt {
		s.deps.Events.LanguagePrompt(s.callID)
	}
}

// PeerDisconnected stops duration bookkeeping and clears its storage.
func (s *Screen) PeerDisconnected() {
	s.mu.Lock()
	timer := s.timer
	s.timer = nil
	s.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
}

// ChooseTargetLanguage handles the language prompt selection: the source
// defaults to a language different from the chosen target, translation is
// enabled, and the remote raw audio is muted since translated audio now
// arrives through the playback buffer.
func (s *Screen) ChooseTargetLanguage(ctx context.Context, target string) error {
	if !s.deps.Catalog.Valid(target) {
		err := fmt.Errorf("unknown target language %q", target)
		s.deps.Events.TranslationError(domain.ErrorCodeValidation, err.Error())
		return err
	}

	s.mu.Lock()
	s.translation.TargetLanguage = target
	s.translation.SourceLanguage = languages.DefaultSource(target)
	s.mu.Unlock()

	return s.SetEnabled(ctx, true)
}

// SetLanguages applies an explicit source/target pick from the settings
// panel. Identical source and target are rejected before any state change.
func (s *Screen) SetLanguages(source, target string) error {
	if err := s.validateLanguages(source, target); err != nil {
		s.deps.Events.TranslationError(domain.ErrorCodeValidation, err.Error())
		return err
	}

	s.mu.Lock()
	s.translation.SourceLanguage = source
	s.translation.TargetLanguage = target
	s.mu.Unlock()
	return nil
}

// SetEnabled is the toggle. Enabling mutes the remote raw audio and starts
// the session; disabling stops the session and restores the original audio.
func (s *Screen) SetEnabled(ctx context.Context, enabled bool) error {
	s.mu.Lock()
	if s.enabled == enabled {
		s.mu.Unlock()
		return nil
	}
	cfg := s.translation
	s.mu.Unlock()

	if !enabled {
		s.mu.Lock()
		s.enabled = false
		s.mu.Unlock()
		s.session.Stop()
		s.deps.Remote.SetMuted(false)
		s.deps.Events.TranslationStateChanged(domain.SessionStateIdle, domain.SessionReasonTranslationStopped)
		return nil
	}

	if err := s.validateLanguages(cfg.SourceLanguage, cfg.TargetLanguage); err != nil {
		s.deps.Events.TranslationError(domain.ErrorCodeValidation, err.Error())
		return err
	}

	s.mu.Lock()
	s.enabled = true
	s.mu.Unlock()
	s.deps.Remote.SetMuted(true)

	if err := s.session.Start(ctx, cfg, s.deps.RemoteStream); err != nil {
		s.mu.Lock()
		s.enabled = false
		s.mu.Unlock()
		s.deps.Remote.SetMuted(false)
		s.deps.Events.TranslationError(startErrorCode(err), err.Error())
		return err
	}

	s.deps.Events.TranslationStateChanged(domain.SessionStateActive, domain.SessionReasonTranslationStarted)
	return nil
}

// Enabled reports the current toggle state.
func (s *Screen) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Status summarizes the screen for the UI.
func (s *Screen) Status() domain.Status {
	return s.session.Status()
}

// Languages returns the selectable catalog.
func (s *Screen) Languages() []languages.Language {
	return s.deps.Catalog.All()
}

// Config returns the current translation configuration.
func (s *Screen) Config() domain.TranslationConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.translation
}

// Close ends the screen: duration storage is cleared, the session is
// detached (stopping it if active), and the remote audio is restored.
func (s *Screen) Close() {
	s.PeerDisconnected()
	s.session.Detach()
	s.deps.Remote.SetMuted(false)
}

func (s *Screen) validateLanguages(source, target string) error {
	if source == "" || target == "" {
		return errors.New("both source and target languages must be selected")
	}
	if source == target {
		return errors.New("source and target languages must differ")
	}
	return nil
}

func (s *Screen) playConnectTone() {
	if s.deps.Tones == nil || s.deps.ConnectTonePath == "" {
		return
	}
	f, err := os.Open(s.deps.ConnectTonePath)
	if err != nil {
		s.logger.Debug("connect tone unavailable", "path", s.deps.ConnectTonePath, "error", err)
		return
	}
	defer f.Close()
	if err := s.deps.Tones.PlayMP3(f); err != nil {
		s.logger.Warn("connect tone playback failed", "error", err)
	}
}

func (s *Screen) onResult(result domain.TranslationResult) {
	s.deps.Events.TranslationText(result)
}

// onSessionError fully resets the toggle: the session already collapsed to
// idle, so the enabled flag follows and the original audio is restored.
func (s *Screen) onSessionError(terr domain.TranslationError) {
	s.mu.Lock()
	s.enabled = false
	s.mu.Unlock()
	s.deps.Remote.SetMuted(false)

	s.deps.Events.TranslationError(domain.ErrorCodeBackend, terr.Message)
	s.deps.Events.TranslationStateChanged(domain.SessionStateIdle, domain.SessionReasonBackendError)
}

func (s *Screen) onSessionDisabled() {
	s.mu.Lock()
	s.enabled = false
	s.mu.Unlock()
	s.deps.Remote.SetMuted(false)

	s.deps.Events.TranslationStateChanged(domain.SessionStateIdle, domain.SessionReasonServerDisabled)
}

func (s *Screen) onPeerTranslation(userName string, enabled bool) {
	s.deps.Events.PeerTranslationChanged(userName, enabled)
}

func startErrorCode(err error) domain.ErrorCode {
	switch {
	case errors.Is(err, translate.ErrHandshakeTimeout):
		return domain.ErrorCodeHandshake
	case errors.Is(err, translate.ErrCaptureFailed):
		return domain.ErrorCodeCapture
	default:
		return domain.ErrorCodeBackend
	}
}
