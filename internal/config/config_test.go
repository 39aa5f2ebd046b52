package config

import (
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LINGOCALL_SIGNAL_URL",
		"LINGOCALL_SIGNAL_TOKEN",
		"LINGOCALL_API_BASE",
		"LINGOCALL_API_TOKEN",
		"LINGOCALL_FFMPEG_COMMAND",
		"LINGOCALL_AUDIO_INPUT_FORMAT",
		"LINGOCALL_AUDIO_INPUT_DEVICE",
		"LINGOCALL_CAPTURE_SAMPLE_RATE",
		"LINGOCALL_CAPTURE_CHANNELS",
		"LINGOCALL_CAPTURE_BLOCK_SIZE",
		"LINGOCALL_FFPLAY_COMMAND",
		"LINGOCALL_PLAYBACK_SAMPLE_RATE",
		"LINGOCALL_CONNECT_TONE",
		"LINGOCALL_HANDSHAKE_TIMEOUT_MS",
		"LINGOCALL_TTS_VOICE",
		"LINGOCALL_LANGUAGES_FILE",
		"LINGOCALL_STATE_DIR",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Signal.URL != "wss://api.jaifriend.com/signal" {
		t.Fatalf("unexpected signal url: %q", cfg.Signal.URL)
	}
	if cfg.API.BaseURL != "https://api.jaifriend.com/v1" {
		t.Fatalf("unexpected api base: %q", cfg.API.BaseURL)
	}
	if cfg.Audio.SampleRate != 16000 || cfg.Audio.Channels != 1 || cfg.Audio.BlockSize != 4096 {
		t.Fatalf("unexpected audio defaults: %+v", cfg.Audio)
	}
	if cfg.Audio.RecorderCommand != "ffmpeg" || cfg.Audio.InputFormat != "pulse" {
		t.Fatalf("unexpected audio commands: %+v", cfg.Audio)
	}
	if cfg.Playback.SampleRate != 24000 || cfg.Playback.PlayerCommand != "ffplay" {
		t.Fatalf("unexpected playback defaults: %+v", cfg.Playback)
	}
	if cfg.Translation.HandshakeTimeout != 5*time.Second {
		t.Fatalf("unexpected handshake timeout: %v", cfg.Translation.HandshakeTimeout)
	}
	if cfg.Languages.Path != filepath.Join(home, ".config", "lingocall", "languages.conf") {
		t.Fatalf("unexpected languages path: %q", cfg.Languages.Path)
	}
	if cfg.Store.Dir != filepath.Join(home, ".local", "state", "lingocall") {
		t.Fatalf("unexpected store dir: %q", cfg.Store.Dir)
	}
}

func TestLoadRespectsOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	t.Setenv("LINGOCALL_SIGNAL_URL", "wss://example.com/signal")
	t.Setenv("LINGOCALL_SIGNAL_TOKEN", "sig-token")
	t.Setenv("LINGOCALL_API_BASE", "https://example.com/v2")
	t.Setenv("LINGOCALL_API_TOKEN", "api-token")
	t.Setenv("LINGOCALL_FFMPEG_COMMAND", "my-ffmpeg")
	t.Setenv("LINGOCALL_AUDIO_INPUT_FORMAT", "alsa")
	t.Setenv("LINGOCALL_AUDIO_INPUT_DEVICE", "mic0")
	t.Setenv("LINGOCALL_CAPTURE_SAMPLE_RATE", "22050")
	t.Setenv("LINGOCALL_CAPTURE_CHANNELS", "2")
	t.Setenv("LINGOCALL_CAPTURE_BLOCK_SIZE", "2048")
	t.Setenv("LINGOCALL_FFPLAY_COMMAND", "my-ffplay")
	t.Setenv("LINGOCALL_PLAYBACK_SAMPLE_RATE", "48000")
	t.Setenv("LINGOCALL_HANDSHAKE_TIMEOUT_MS", "2500")
	t.Setenv("LINGOCALL_TTS_VOICE", "alloy")
	t.Setenv("LINGOCALL_STATE_DIR", filepath.Join(home, "state"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Signal.URL != "wss://example.com/signal" || cfg.Signal.Token != "sig-token" {
		t.Fatalf("unexpected signal config: %+v", cfg.Signal)
	}
	if cfg.API.BaseURL != "https://example.com/v2" || cfg.API.Token != "api-token" {
		t.Fatalf("unexpected api config: %+v", cfg.API)
	}
	if cfg.Audio.RecorderCommand != "my-ffmpeg" || cfg.Audio.InputFormat != "alsa" || cfg.Audio.InputDevice != "mic0" {
		t.Fatalf("unexpected audio config: %+v", cfg.Audio)
	}
	if cfg.Audio.SampleRate != 22050 || cfg.Audio.Channels != 2 || cfg.Audio.BlockSize != 2048 {
		t.Fatalf("unexpected audio numbers: %+v", cfg.Audio)
	}
	if cfg.Playback.PlayerCommand != "my-ffplay" || cfg.Playback.SampleRate != 48000 {
		t.Fatalf("unexpected playback config: %+v", cfg.Playback)
	}
	if cfg.Translation.HandshakeTimeout != 2500*time.Millisecond {
		t.Fatalf("unexpected handshake timeout: %v", cfg.Translation.HandshakeTimeout)
	}
	if cfg.Translation.TTSVoice != "alloy" {
		t.Fatalf("unexpected tts voice: %q", cfg.Translation.TTSVoice)
	}
	if cfg.Store.Dir != filepath.Join(home, "state") {
		t.Fatalf("unexpected store dir: %q", cfg.Store.Dir)
	}
}

func TestLoadFallsBackOnInvalidNumbers(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	t.Setenv("LINGOCALL_CAPTURE_SAMPLE_RATE", "not-a-number")
	t.Setenv("LINGOCALL_CAPTURE_BLOCK_SIZE", "8")
	t.Setenv("LINGOCALL_HANDSHAKE_TIMEOUT_MS", "-5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Audio.SampleRate != 16000 {
		t.Fatalf("expected sample rate fallback, got %d", cfg.Audio.SampleRate)
	}
	if cfg.Audio.BlockSize != 4096 {
		t.Fatalf("expected block size fallback, got %d", cfg.Audio.BlockSize)
	}
	if cfg.Translation.HandshakeTimeout != 5*time.Second {
		t.Fatalf("expected handshake fallback, got %v", cfg.Translation.HandshakeTimeout)
	}
}
