package llm

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/sashabaranov/go-openai"

	"murmur.town/fault"
)

type ChatRequest struct {
	SystemPrompt string
	UserMessage  string
	MaxTokens    int
	Temperature  float32
}

// LanguageModel produces one completion for a system/user prompt pair.
type LanguageModel interface {
	Complete(ctx context.Context, req *ChatRequest) (string, error)
}

// OpenAI talks to an OpenAI-compatible chat-completions backend.
type OpenAI struct {
	client *openai.Client
	model  string
	logger *log.Logger
}

func NewOpenAI(baseURL, apiKey, model string, logger *log.Logger) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/") + "/v1"
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger,
	}
}

func (o *OpenAI) Complete(ctx context.Context, req *ChatRequest) (string, error) {
	resp, err := o.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       o.model,
			MaxTokens:   req.MaxTokens,
			Temperature: req.Temperature,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: req.SystemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: req.UserMessage,
				},
			},
		},
	)
	if err != nil {
		return "", fault.FromBackend(err)
	}
	if len(resp.Choices) == 0 {
		return "", fault.New(fault.BackendError, "completion has no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	o.logger.Debug("completion", "model", o.model, "len", len(content))
	return content, nil
}
