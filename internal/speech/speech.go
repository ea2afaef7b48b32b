// Package speech turns coach text into audio files served to the browser,
// and cleans old files up.
package speech

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"
)

// ErrUnavailable is returned when no synthesizer is configured. Audio is
// optional; callers reply without it.
var ErrUnavailable = errors.New("speech: synthesis unavailable")

// URLPrefix is where generated files are served from.
const URLPrefix = "/audio/"

// Audio is a generated file.
type Audio struct {
	URL  string `json:"url"`
	Path string `json:"-"`
}

// Synthesizer renders text to an audio file.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (Audio, error)
}

// Unavailable is the Synthesizer used when speech is switched off.
type Unavailable struct{}

func (Unavailable) Synthesize(context.Context, string) (Audio, error) {
	return Audio{}, ErrUnavailable
}

// Config configures synthesis and housekeeping.
type Config struct {
	Dir    string
	MaxAge time.Duration
	Voice  string
	Model  string
	// APIKey enables synthesis. Empty means Unavailable.
	APIKey  string
	BaseURL string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Dir:    "static/audio",
		MaxAge: time.Hour,
		Voice:  "nova",
		Model:  "tts-1",
	}
}

// ConfigFromEnv reads TALKIE_AUDIO_DIR, TALKIE_AUDIO_MAX_AGE,
// TALKIE_TTS_VOICE, TALKIE_TTS_MODEL and the OpenAI key.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("TALKIE_AUDIO_DIR"); v != "" {
		cfg.Dir = v
	}
	if v := os.Getenv("TALKIE_AUDIO_MAX_AGE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.MaxAge = d
		}
	}
	if v := os.Getenv("TALKIE_TTS_VOICE"); v != "" {
		cfg.Voice = strings.ToLower(v)
	}
	if v := os.Getenv("TALKIE_TTS_MODEL"); v != "" {
		cfg.Model = v
	}
	cfg.APIKey = os.Getenv("TALKIE_OPENAI_API_KEY")
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	cfg.BaseURL = os.Getenv("TALKIE_OPENAI_BASE_URL")
	return cfg
}

// New returns an OpenAI-backed Synthesizer, or Unavailable when no key is
// configured.
func New(cfg Config) Synthesizer {
	if cfg.APIKey == "" {
		return Unavailable{}
	}
	return NewOpenAISynthesizer(cfg)
}
