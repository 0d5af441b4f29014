// Package snd normalizes client audio and slices long recordings into
// bounded chunks the transcription backend will accept.
package snd

import (
	"context"
)

// Transcoder converts arbitrary-codec audio into mono 16 kHz 16-bit PCM
// WAV. The caller owns deleting the returned file.
type Transcoder interface {
	Normalize(ctx context.Context, inPath string) (string, error)
}

// Splitter cuts a normalized WAV into an ordered sequence of chunk files.
type Splitter interface {
	Split(ctx context.Context, wavPath, outDir string) (ChunkSeq, error)
}

// ChunkSeq yields chunk file paths in strict temporal order. It is finite
// and non-restartable; Next returns io.EOF after the last chunk.
type ChunkSeq interface {
	Next(ctx context.Context) (string, error)
}

const (
	// SampleRate is the normalized sample rate the backend expects.
	SampleRate = 16000
	// Channels is always mono after normalization.
	Channels = 1
	// BitDepth of the normalized linear PCM.
	BitDepth = 16
)
