package ai

import (
	"context"
	"errors"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/feedbacklens/backend/internal/models"
)

const openAIRequestTimeout = 60 * time.Second

type OpenAIAnalyzer struct {
	client *openai.Client
	model  string
}

func NewOpenAIAnalyzer(apiKey, model string) *OpenAIAnalyzer {
	cfg := openai.DefaultConfig(apiKey)
	cfg.HTTPClient = &http.Client{Timeout: openAIRequestTimeout}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIAnalyzer{client: openai.NewClientWithConfig(cfg), model: model}
}

func (a *OpenAIAnalyzer) Name() string { return "openai" }

func (a *OpenAIAnalyzer) ClassifyComment(ctx context.Context, text string) (models.SentimentResult, error) {
	raw, err := a.complete(ctx, classifySystemPrompt, classifyUserPrompt(text))
	if err != nil {
		return models.SentimentResult{}, err
	}
	return parseClassification(raw)
}

func (a *OpenAIAnalyzer) GenerateRecommendation(ctx context.Context, pc ProductContext) (RecommendationDraft, error) {
	raw, err := a.complete(ctx, recommendSystemPrompt, recommendUserPrompt(pc))
	if err != nil {
		return RecommendationDraft{}, err
	}
	return parseRecommendation(raw)
}

func (a *OpenAIAnalyzer) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrInvalidResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return RateLimitError{}
		case apiErr.HTTPStatusCode >= 500:
			return ErrUnavailable
		}
	}
	return err
}
