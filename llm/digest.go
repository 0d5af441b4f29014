package llm

import (
	"context"
	"fmt"
	"strings"
)

// sectionSize is how many transcript lines feed one section summary.
const sectionSize = 12

const digestSystemPrompt = "You summarize meeting and speech transcripts. " +
	"Be faithful to the source, keep names and numbers, no invented detail."

// Digest is the downloadable form of a finished transcript: the combined
// text, one summary per section, and an overall summary.
type Digest struct {
	Transcript string   `json:"transcript"`
	Sections   []string `json:"sections"`
	Summary    string   `json:"summary"`
}

// BuildDigest combines ordered transcript texts and asks the language model
// for per-section summaries plus a final summary of the whole.
func BuildDigest(
	ctx context.Context,
	model LanguageModel,
	texts []string,
) (*Digest, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no transcript texts to digest")
	}

	combined := strings.Join(texts, "\n")

	var sections []string
	for start := 0; start < len(texts); start += sectionSize {
		end := start + sectionSize
		if end > len(texts) {
			end = len(texts)
		}
		part := strings.Join(texts[start:end], "\n")

		summary, err := model.Complete(ctx, &ChatRequest{
			SystemPrompt: digestSystemPrompt,
			UserMessage: "Summarize this transcript section in a few sentences:\n\n" +
				part,
			MaxTokens: 300,
		})
		if err != nil {
			return nil, fmt.Errorf("summarize section %d: %w", len(sections)+1, err)
		}
		sections = append(sections, summary)
	}

	final, err := model.Complete(ctx, &ChatRequest{
		SystemPrompt: digestSystemPrompt,
		UserMessage: "These are section summaries of one transcript, in order. " +
			"Write a single overall summary:\n\n" +
			strings.Join(sections, "\n\n"),
		MaxTokens: 400,
	})
	if err != nil {
		return nil, fmt.Errorf("summarize transcript: %w", err)
	}

	return &Digest{
		Transcript: combined,
		Sections:   sections,
		Summary:    final,
	}, nil
}
