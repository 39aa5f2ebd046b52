package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"lingocall/internal/bootstrap"
	"lingocall/internal/call"
	"lingocall/internal/domain"
	"lingocall/internal/languages"
	"lingocall/internal/ports"
)

const (
	eventState       = "lingocall:state"
	eventText        = "lingocall:text"
	eventError       = "lingocall:error"
	eventPeer        = "lingocall:peer"
	eventDuration    = "lingocall:duration"
	eventPrompt      = "lingocall:language-prompt"
	eventRemoteMuted = "lingocall:remote-muted"
)

// App is the Wails application root.
type App struct {
	ctx context.Context

	services  bootstrap.Services
	current   *bootstrap.CallSession
	clipboard ports.Clipboard
	bootErr   error
}

func NewApp() *App {
	return &App{clipboard: &wailsClipboard{}}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(slog.Default())
	if err != nil {
		a.bootErr = err
		a.TranslationError(domain.ErrorCodeStartup, err.Error())
		return
	}
	a.services = services
}

// JoinCall connects the signaling channel for a call and prepares the
// translation subsystem.
func (a *App) JoinCall(callID, roomID string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	if a.current != nil {
		a.current.Leave()
		a.current = nil
	}

	session, err := a.services.JoinCall(a.ctx, callID, roomID, &wailsRemoteAudio{app: a}, a, nil)
	if err != nil {
		a.TranslationError(domain.ErrorCodeStartup, err.Error())
		return err
	}
	a.current = session
	return nil
}

// LeaveCall tears down the active call, if any.
func (a *App) LeaveCall() {
	if a.current == nil {
		return
	}
	a.current.Leave()
	a.current = nil
}

// PeerConnected is invoked by the frontend when the peer connection reports
// connected.
func (a *App) PeerConnected() error {
	screen, err := a.requireCall()
	if err != nil {
		return err
	}
	screen.PeerConnected(a.ctx)
	return nil
}

// PeerDisconnected is invoked when the peer connection drops.
func (a *App) PeerDisconnected() error {
	screen, err := a.requireCall()
	if err != nil {
		return err
	}
	screen.PeerDisconnected()
	return nil
}

// ChooseTargetLanguage applies the language prompt selection and enables
// translation.
func (a *App) ChooseTargetLanguage(target string) error {
	screen, err := a.requireCall()
	if err != nil {
		return err
	}
	return screen.ChooseTargetLanguage(a.ctx, target)
}

// SetLanguages applies an explicit source/target pick from settings.
func (a *App) SetLanguages(source, target string) error {
	screen, err := a.requireCall()
	if err != nil {
		return err
	}
	return screen.SetLanguages(source, target)
}

// SetTranslationEnabled toggles the translation feature.
func (a *App) SetTranslationEnabled(enabled bool) error {
	screen, err := a.requireCall()
	if err != nil {
		return err
	}
	return screen.SetEnabled(a.ctx, enabled)
}

// GetStatus returns the current translation status.
func (a *App) GetStatus() domain.Status {
	if a.current == nil {
		return domain.Status{State: domain.SessionStateIdle}
	}
	return a.current.Screen.Status()
}

// GetLanguages returns the selectable language catalog.
func (a *App) GetLanguages() []languages.Language {
	if a.current == nil {
		return nil
	}
	return a.current.Screen.Languages()
}

// CopyTranslation puts the latest translation text on the clipboard.
func (a *App) CopyTranslation() error {
	screen, err := a.requireCall()
	if err != nil {
		return err
	}
	status := screen.Status()
	if status.Translation == "" {
		return errors.New("no translation to copy")
	}
	if err := a.clipboard.SetText(a.ctx, status.Translation); err != nil {
		a.TranslationError(domain.ErrorCodeClipboard, err.Error())
		return err
	}
	return nil
}

func (a *App) shutdown(_ context.Context) {
	a.LeaveCall()
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.ctx == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

func (a *App) requireCall() (*call.Screen, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	if a.current == nil {
		return nil, errors.New("no active call")
	}
	return a.current.Screen, nil
}

// TranslationStateChanged emits session lifecycle updates to the frontend.
func (a *App) TranslationStateChanged(state domain.SessionState, reason domain.SessionStateReason) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventState, map[string]string{
		"state":   string(state),
		"reason":  string(reason),
		"message": stateReasonMessage(reason),
	})
}

// TranslationText emits the latest transcript/translation overlay text.
func (a *App) TranslationText(result domain.TranslationResult) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventText, result)
}

// TranslationError emits backend errors to the UI.
func (a *App) TranslationError(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

// PeerTranslationChanged surfaces the other participant's translation state.
func (a *App) PeerTranslationChanged(userName string, enabled bool) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventPeer, map[string]any{
		"userName": userName,
		"enabled":  enabled,
	})
}

// CallDuration emits the per-second call timer.
func (a *App) CallDuration(callID string, seconds int) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventDuration, map[string]any{
		"callId":  callID,
		"seconds": seconds,
	})
}

// LanguagePrompt asks the frontend to open the language picker.
func (a *App) LanguagePrompt(callID string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventPrompt, map[string]string{"callId": callID})
}

func stateReasonMessage(reason domain.SessionStateReason) string {
	switch reason {
	case domain.SessionReasonChannelReady:
		return "Channel ready"
	case domain.SessionReasonHandshakeStarted:
		return "Enabling translation..."
	case domain.SessionReasonTranslationStarted:
		return "Translation active"
	case domain.SessionReasonTranslationStopped:
		return "Translation stopped"
	case domain.SessionReasonServerDisabled:
		return "Translation ended by server"
	case domain.SessionReasonHandshakeTimeout:
		return "Translation service did not respond"
	case domain.SessionReasonBackendError:
		return "Translation failed"
	case domain.SessionReasonCaptureFailed:
		return "Microphone unavailable"
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeHandshake:
		return "Translation service did not respond"
	case domain.ErrorCodeBackend:
		return "Translation error"
	case domain.ErrorCodeCapture:
		return "Microphone unavailable"
	case domain.ErrorCodePlayback:
		return "Audio playback issue"
	case domain.ErrorCodeValidation:
		return "Invalid language selection"
	case domain.ErrorCodeDetails:
		return "Could not load call details"
	case domain.ErrorCodeClipboard:
		return "Clipboard write failed"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}

type wailsClipboard struct{}

func (c *wailsClipboard) SetText(ctx context.Context, text string) error {
	return runtime.ClipboardSetText(ctx, text)
}

// wailsRemoteAudio drives the remote <video> element's muted flag through a
// frontend event.
type wailsRemoteAudio struct {
	app *App
}

func (r *wailsRemoteAudio) SetMuted(muted bool) {
	if r.app.ctx == nil {
		return
	}
	runtime.EventsEmit(r.app.ctx, eventRemoteMuted, map[string]bool{"muted": muted})
}
