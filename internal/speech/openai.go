package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
)

// maxInput is the longest text sent for synthesis, in runes.
const maxInput = 1000

// OpenAISynthesizer renders speech with the OpenAI audio API and writes
// <uuid>.mp3 files into a directory.
type OpenAISynthesizer struct {
	client *openai.Client
	dir    string
	voice  openai.SpeechVoice
	model  openai.SpeechModel
}

// NewOpenAISynthesizer creates a synthesizer writing into cfg.Dir.
func NewOpenAISynthesizer(cfg Config) *OpenAISynthesizer {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	return &OpenAISynthesizer{
		client: openai.NewClientWithConfig(config),
		dir:    cfg.Dir,
		voice:  openai.SpeechVoice(cfg.Voice),
		model:  openai.SpeechModel(cfg.Model),
	}
}

func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text string) (Audio, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Audio{}, errors.New("speech: empty text")
	}
	if r := []rune(text); len(r) > maxInput {
		text = string(r[:maxInput])
	}

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          s.model,
		Input:          text,
		Voice:          s.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return Audio{}, fmt.Errorf("create speech: %w", err)
	}
	defer resp.Close()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Audio{}, fmt.Errorf("create audio dir: %w", err)
	}
	name := uuid.NewString() + ".mp3"
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return Audio{}, fmt.Errorf("create audio file: %w", err)
	}
	if _, err := io.Copy(f, resp); err != nil {
		f.Close()
		os.Remove(path)
		return Audio{}, fmt.Errorf("write audio: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return Audio{}, fmt.Errorf("close audio: %w", err)
	}

	return Audio{URL: URLPrefix + name, Path: path}, nil
}
