package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"lingocall/internal/audio"
	"lingocall/internal/call"
	"lingocall/internal/config"
	"lingocall/internal/languages"
	"lingocall/internal/playback"
	"lingocall/internal/ports"
	"lingocall/internal/signal"
	"lingocall/internal/store"
	"lingocall/internal/translate"
)

// Services is the assembled runtime graph shared across calls.
type Services struct {
	Config    config.Config
	Catalog   *languages.Catalog
	Store     *store.FileStore
	Directory *call.HTTPDirectory
	Logger    *slog.Logger
}

// Build wires the per-process dependencies.
func Build(logger *slog.Logger) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}

	catalog, err := languages.NewCatalog(cfg.Languages.Path)
	if err != nil {
		return Services{}, err
	}

	kv, err := store.NewFileStore(cfg.Store.Dir)
	if err != nil {
		return Services{}, err
	}

	return Services{
		Config:    cfg,
		Catalog:   catalog,
		Store:     kv,
		Directory: call.NewHTTPDirectory(cfg.API.BaseURL, cfg.API.Token),
		Logger:    logger,
	}, nil
}

// CallSession is everything owned by one joined call.
type CallSession struct {
	Channel *signal.Channel
	Player  *playback.Player
	Screen  *call.Screen
}

// JoinCall dials the signaling channel and assembles the per-call graph:
// playback buffer, translation session, and call screen.
func (s Services) JoinCall(ctx context.Context, callID, roomID string, remote ports.RemoteAudio, events ports.EventSink, remoteStream io.Reader) (*CallSession, error) {
	header := http.Header{}
	if s.Config.Signal.Token != "" {
		header.Set("Authorization", "Bearer "+s.Config.Signal.Token)
	}

	channel, err := signal.Dial(ctx, s.Config.Signal.URL, header, s.Logger)
	if err != nil {
		return nil, err
	}

	sink := playback.NewFFPlaySink(s.Config.Playback.PlayerCommand, s.Config.Playback.SampleRate)
	player := playback.NewPlayer(sink, s.Config.Playback.SampleRate, s.Logger)

	capture := audio.NewFFMPEGCapture(s.Config.Audio.RecorderCommand)
	sessionCfg := translate.Config{
		HandshakeTimeout: s.Config.Translation.HandshakeTimeout,
		Capture: ports.AudioConfig{
			SampleRate:  s.Config.Audio.SampleRate,
			Channels:    s.Config.Audio.Channels,
			BlockSize:   s.Config.Audio.BlockSize,
			InputFormat: s.Config.Audio.InputFormat,
			InputDevice: s.Config.Audio.InputDevice,
		},
	}

	screen := call.NewScreen(call.Deps{
		NewSession: func(handlers translate.Handlers) call.TranslationSession {
			return translate.NewSession(channel, capture, player, s.Logger, sessionCfg, handlers)
		},
		Remote:          remote,
		Directory:       s.Directory,
		Store:           s.Store,
		Events:          events,
		Catalog:         s.Catalog,
		Logger:          s.Logger,
		RemoteStream:    remoteStream,
		Tones:           player,
		ConnectTonePath: s.Config.Playback.ConnectTonePath,
		TTSVoice:        s.Config.Translation.TTSVoice,
	}, callID, roomID)

	return &CallSession{Channel: channel, Player: player, Screen: screen}, nil
}

// Leave tears the per-call graph down in dependency order.
func (c *CallSession) Leave() {
	c.Screen.Close()
	_ = c.Player.Close()
	_ = c.Channel.Close()
}
