package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config stores runtime configuration for the call client.
type Config struct {
	Signal      SignalConfig
	API         APIConfig
	Audio       AudioConfig
	Playback    PlaybackConfig
	Translation TranslationConfig
	Languages   LanguagesConfig
	Store       StoreConfig
}

type SignalConfig struct {
	URL   string
	Token string
}

type APIConfig struct {
	BaseURL string
	Token   string
}

type AudioConfig struct {
	RecorderCommand string
	InputFormat     string
	InputDevice     string
	SampleRate      int
	Channels        int
	BlockSize       int
}

type PlaybackConfig struct {
	PlayerCommand   string
	SampleRate      int
	ConnectTonePath string
}

type TranslationConfig struct {
	HandshakeTimeout time.Duration
	TTSVoice         string
}

type LanguagesConfig struct {
	Path string
}

type StoreConfig struct {
	Dir string
}

// Load resolves configuration from a .env file (when present), environment
// variables, and sensible defaults.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, errors.New("could not determine home directory")
	}

	cfg := Config{
		Signal: SignalConfig{
			URL:   envOrDefault("LINGOCALL_SIGNAL_URL", "wss://api.jaifriend.com/signal"),
			Token: strings.TrimSpace(os.Getenv("LINGOCALL_SIGNAL_TOKEN")),
		},
		API: APIConfig{
			BaseURL: envOrDefault("LINGOCALL_API_BASE", "https://api.jaifriend.com/v1"),
			Token:   strings.TrimSpace(os.Getenv("LINGOCALL_API_TOKEN")),
		},
		Audio: AudioConfig{
			RecorderCommand: envOrDefault("LINGOCALL_FFMPEG_COMMAND", "ffmpeg"),
			InputFormat:     envOrDefault("LINGOCALL_AUDIO_INPUT_FORMAT", "pulse"),
			InputDevice:     envOrDefault("LINGOCALL_AUDIO_INPUT_DEVICE", "default"),
			SampleRate:      envOrDefaultInt("LINGOCALL_CAPTURE_SAMPLE_RATE", 16000),
			Channels:        envOrDefaultInt("LINGOCALL_CAPTURE_CHANNELS", 1),
			BlockSize:       envOrDefaultInt("LINGOCALL_CAPTURE_BLOCK_SIZE", 4096),
		},
		Playback: PlaybackConfig{
			PlayerCommand:   envOrDefault("LINGOCALL_FFPLAY_COMMAND", "ffplay"),
			SampleRate:      envOrDefaultInt("LINGOCALL_PLAYBACK_SAMPLE_RATE", 24000),
			ConnectTonePath: strings.TrimSpace(os.Getenv("LINGOCALL_CONNECT_TONE")),
		},
		Translation: TranslationConfig{
			HandshakeTimeout: time.Duration(envOrDefaultInt("LINGOCALL_HANDSHAKE_TIMEOUT_MS", 5000)) * time.Millisecond,
			TTSVoice:         strings.TrimSpace(os.Getenv("LINGOCALL_TTS_VOICE")),
		},
		Languages: LanguagesConfig{
			Path: envOrDefault("LINGOCALL_LANGUAGES_FILE", filepath.Join(home, ".config", "lingocall", "languages.conf")),
		},
		Store: StoreConfig{
			Dir: envOrDefault("LINGOCALL_STATE_DIR", filepath.Join(home, ".local", "state", "lingocall")),
		},
	}

	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Audio.BlockSize < 256 {
		cfg.Audio.BlockSize = 4096
	}
	if cfg.Playback.SampleRate <= 0 {
		cfg.Playback.SampleRate = 24000
	}
	if cfg.Translation.HandshakeTimeout <= 0 {
		cfg.Translation.HandshakeTimeout = 5 * time.Second
	}

	return cfg, nil
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
