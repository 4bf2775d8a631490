package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/feedbacklens/backend/internal/models"
)

// Analyzer is the boundary to the external language-understanding service.
// ClassifyComment scores one comment; GenerateRecommendation turns a product's
// negative feedback into an issue/suggestion pair. Both must be safe for
// concurrent use.
type Analyzer interface {
	Name() string
	ClassifyComment(ctx context.Context, text string) (models.SentimentResult, error)
	GenerateRecommendation(ctx context.Context, pc ProductContext) (RecommendationDraft, error)
}

// ProductContext is the evidence handed to the recommendation call: a bounded
// sample of a product's negative comments plus the aspects they mentioned.
type ProductContext struct {
	Product          string   `json:"product"`
	NegativeComments []string `json:"negative_comments"`
	Aspects          []string `json:"aspects,omitempty"`
}

type RecommendationDraft struct {
	Issue      string `json:"issue"`
	Suggestion string `json:"suggestion"`
}

var (
	// ErrInvalidResponse marks a malformed service reply. Retryable: models
	// occasionally emit broken JSON and succeed on the next attempt.
	ErrInvalidResponse = errors.New("analyzer returned invalid response")
	// ErrUnavailable marks a transient upstream failure (5xx, connection reset).
	ErrUnavailable = errors.New("analyzer unavailable")
)

type RateLimitError struct {
	RetryAfter time.Duration
}

func (r RateLimitError) Error() string {
	if r.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", r.RetryAfter)
	}
	return "rate limited"
}

// IsRetryable reports whether a classification error is worth another attempt.
// Cancellation of the batch context is terminal and never retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var rl RateLimitError
	if errors.As(err, &rl) {
		return true
	}
	if errors.Is(err, ErrInvalidResponse) || errors.Is(err, ErrUnavailable) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

func normalizeLabel(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case models.SentimentPositive:
		return models.SentimentPositive, true
	case models.SentimentNeutral:
		return models.SentimentNeutral, true
	case models.SentimentNegative:
		return models.SentimentNegative, true
	default:
		return "", false
	}
}

// scoreForLabel derives a numeric score when the service omitted one.
func scoreForLabel(label string) float64 {
	switch label {
	case models.SentimentPositive:
		return 0.6
	case models.SentimentNegative:
		return -0.6
	default:
		return 0.0
	}
}

func clampScore(s float64) float64 {
	if s > 1.0 {
		return 1.0
	}
	if s < -1.0 {
		return -1.0
	}
	return s
}

// finalizeResult validates a raw service reply and guarantees every result
// carries a valid label and a numeric score in [-1, 1].
func finalizeResult(rawLabel string, score *float64, aspects []models.AspectMention) (models.SentimentResult, error) {
	label, ok := normalizeLabel(rawLabel)
	if !ok {
		return models.SentimentResult{}, fmt.Errorf("%w: label %q", ErrInvalidResponse, rawLabel)
	}
	res := models.SentimentResult{Label: label}
	if score == nil {
		res.Score = scoreForLabel(label)
	} else {
		res.Score = clampScore(*score)
	}
	for _, a := range aspects {
		name := strings.ToLower(strings.TrimSpace(a.Name))
		if name == "" {
			continue
		}
		mention, ok := normalizeLabel(a.Sentiment)
		if !ok {
			mention = label
		}
		res.Aspects = append(res.Aspects, models.AspectMention{Name: name, Sentiment: mention})
	}
	return res, nil
}
