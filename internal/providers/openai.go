package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// LetterGenerator produces an appeal letter body for a payer/denial pair.
type LetterGenerator interface {
	GenerateLetter(ctx context.Context, payer, denialCode string) (string, error)
}

// ErrEmptyCompletion is returned when the provider answers with no usable text.
var ErrEmptyCompletion = errors.New("provider returned an empty completion")

// OpenAILetterGenerator generates letters through the OpenAI chat API.
type OpenAILetterGenerator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAILetterGenerator creates a generator bound to the given API key.
// Returns nil when no key is configured; callers treat a nil generator as
// "always use the fallback letter".
func NewOpenAILetterGenerator(apiKey, model string, timeout time.Duration) *OpenAILetterGenerator {
	if apiKey == "" {
		return nil
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &OpenAILetterGenerator{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: timeout,
	}
}

// GenerateLetter asks the model for a letter body. The call is bounded by
// the configured timeout; any failure or blank answer is an error so the
// caller can fall back deterministically.
func (g *OpenAILetterGenerator) GenerateLetter(ctx context.Context, payer, denialCode string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: LetterPrompt(payer, denialCode),
		}},
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	letter := strings.TrimSpace(resp.Choices[0].Message.Content)
	if letter == "" {
		return "", ErrEmptyCompletion
	}
	return letter, nil
}

// LetterPrompt builds the generation prompt for an appeal letter.
func LetterPrompt(payer, denialCode string) string {
	return fmt.Sprintf(`You are a medical billing specialist. Please generate a professional, factual insurance denial appeal letter for the following:

Payer: %s
Denial Code: %s

The appeal should be polite, compliant, and formatted in clear paragraphs.`, payer, denialCode)
}

// FallbackLetter returns the deterministic templated letter used whenever
// the provider is unavailable, errors out, or answers blank. It always
// cites the payer and the denial code and is never empty.
func FallbackLetter(payer, denialCode string) string {
	return fmt.Sprintf(`Dear Insurance Reviewer,

We are writing to appeal the recent denial for services submitted under denial code %s to %s. We believe this claim was wrongly denied and respectfully request a reconsideration.

Sincerely,
Your Clinic Billing Team`, denialCode, payer)
}
