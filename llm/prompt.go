package llm

import (
	"fmt"
)

// Task selects the prompt template applied to recognized text.
type Task string

const (
	TaskTranslation  Task = "translation"
	TaskConversation Task = "conversation"
)

const (
	translationSystemPrompt = "You are a professional, authentic machine translation engine."

	conversationSystemPrompt = "You are a concise, friendly conversation partner."
)

// PromptFor builds the deterministic system/user prompt pair for a task.
// Translation asks for the bare translation with no commentary; conversation
// asks for a short reply in the target language.
func PromptFor(task Task, targetLanguage, text string) (*ChatRequest, error) {
	switch task {
	case TaskTranslation:
		return &ChatRequest{
			SystemPrompt: translationSystemPrompt,
			UserMessage: fmt.Sprintf(
				"Translate the following source text to %s, "+
					"Output translation directly without any additional text.\n"+
					"Source Text: %s\nTranslated Text:",
				targetLanguage, text,
			),
		}, nil
	case TaskConversation:
		return &ChatRequest{
			SystemPrompt: conversationSystemPrompt,
			UserMessage: fmt.Sprintf(
				"Reply to the following message in %s. "+
					"Keep the reply short and conversational, "+
					"without any additional commentary.\n"+
					"Message: %s\nReply:",
				targetLanguage, text,
			),
		}, nil
	default:
		return nil, fmt.Errorf("no prompt template for task %q", task)
	}
}
