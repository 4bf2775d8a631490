package ai

import (
	"context"
	"errors"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/feedbacklens/backend/internal/models"
)

const anthropicMaxTokens = 1024

type AnthropicAnalyzer struct {
	client anthropic.Client
	model  string
}

func NewAnthropicAnalyzer(apiKey, model string) *AnthropicAnalyzer {
	if model == "" {
		model = string(anthropic.ModelClaude3_5HaikuLatest)
	}
	return &AnthropicAnalyzer{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (a *AnthropicAnalyzer) Name() string { return "anthropic" }

func (a *AnthropicAnalyzer) ClassifyComment(ctx context.Context, text string) (models.SentimentResult, error) {
	raw, err := a.complete(ctx, classifySystemPrompt, classifyUserPrompt(text))
	if err != nil {
		return models.SentimentResult{}, err
	}
	return parseClassification(raw)
}

func (a *AnthropicAnalyzer) GenerateRecommendation(ctx context.Context, pc ProductContext) (RecommendationDraft, error) {
	raw, err := a.complete(ctx, recommendSystemPrompt, recommendUserPrompt(pc))
	if err != nil {
		return RecommendationDraft{}, err
	}
	return parseRecommendation(raw)
}

func (a *AnthropicAnalyzer) complete(ctx context.Context, system, user string) (string, error) {
	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: anthropicMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", mapAnthropicError(err)
	}
	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", ErrInvalidResponse
}

func mapAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return RateLimitError{}
		case apiErr.StatusCode >= 500:
			return ErrUnavailable
		}
	}
	return err
}
