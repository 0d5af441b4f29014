package llm

import (
	"context"
)

// Stub is a scriptable LanguageModel for tests.
type Stub struct {
	Fn func(ctx context.Context, req *ChatRequest) (string, error)

	Requests []*ChatRequest
}

func (s *Stub) Complete(ctx context.Context, req *ChatRequest) (string, error) {
	s.Requests = append(s.Requests, req)
	if s.Fn == nil {
		return "", nil
	}
	return s.Fn(ctx, req)
}
