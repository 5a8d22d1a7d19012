package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"
)

// ---------------------------------------------------------------------------
// OpenAI condensation service
// Optional: rewrites over-long articles into a spoken-news brief that fits
// the synthesis length budget. When the service is absent or the request
// fails, callers fall back to plain truncation.
// ---------------------------------------------------------------------------

type OpenAIService struct {
	client *openai.Client
}

func NewOpenAIService(apiKey string) *OpenAIService {
	return &OpenAIService{
		client: openai.NewClient(apiKey),
	}
}

// Condense rewrites text to at most maxLength characters while keeping the
// key facts, phrased for listening rather than reading.
func (s *OpenAIService) Condense(ctx context.Context, text string, maxLength int) (string, error) {
	systemPrompt := fmt.Sprintf(
		"You condense news articles into spoken-news briefs. Rewrite the user's article "+
			"as a clear narration of at most %d characters. Keep every key fact, drop markup "+
			"and boilerplate, and phrase it for listening. Reply with the narration only.",
		maxLength,
	)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: "gpt-5-mini",
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		Temperature: 1.0,
	})

	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	condensed := strings.TrimSpace(resp.Choices[0].Message.Content)
	if condensed == "" {
		return "", fmt.Errorf("openai returned empty condensation")
	}

	// The model occasionally overshoots; a hard cut keeps the bound honest
	if utf8.RuneCountInString(condensed) > maxLength {
		condensed = string([]rune(condensed)[:maxLength])
	}

	log.Printf("[OpenAI] Condensed article from %d to %d characters",
		utf8.RuneCountInString(text), utf8.RuneCountInString(condensed))
	return condensed, nil
}
