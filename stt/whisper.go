package stt

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/sashabaranov/go-openai"

	"murmur.town/fault"
)

// Whisper talks to an OpenAI-compatible speech-to-text backend
// (faster-whisper-server and friends) over its multipart
// /v1/audio/transcriptions endpoint.
type Whisper struct {
	client *openai.Client
	logger *log.Logger
}

func NewWhisper(baseURL, apiKey string, logger *log.Logger) *Whisper {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/") + "/v1"
	return &Whisper{
		client: openai.NewClientWithConfig(cfg),
		logger: logger,
	}
}

func (w *Whisper) Transcribe(ctx context.Context, req Request) (string, error) {
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:       req.Model,
		FilePath:    req.AudioPath,
		Language:    req.Language,
		Temperature: req.Temperature,
		Format:      openai.AudioResponseFormat(req.ResponseFormat),
	})
	if err != nil {
		return "", fault.FromBackend(err)
	}

	text := strings.TrimSpace(resp.Text)
	w.logger.Info("hear", "txt", text, "model", req.Model, "lang", req.Language)
	return text, nil
}
