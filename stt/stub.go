package stt

import (
	"context"
)

// Stub is a scriptable Transcriber for tests.
type Stub struct {
	Fn func(ctx context.Context, req Request) (string, error)

	Requests []Request
}

func (s *Stub) Transcribe(ctx context.Context, req Request) (string, error) {
	s.Requests = append(s.Requests, req)
	if s.Fn == nil {
		return "", nil
	}
	return s.Fn(ctx, req)
}
