package stt

import (
	"context"
)

// Request carries one normalized audio chunk to the speech-to-text backend.
type Request struct {
	AudioPath      string
	Model          string
	Language       string
	ResponseFormat string
	Temperature    float32
}

// Transcriber submits one chunk and returns the recognized text, which may
// be empty for silence. Implementations never retry; the client decides
// whether to resubmit.
type Transcriber interface {
	Transcribe(ctx context.Context, req Request) (string, error)
}
