package ai

import (
	"context"
	"fmt"

	"github.com/feedbacklens/backend/internal/models"
	"github.com/feedbacklens/backend/internal/utils"
)

// MockAnalyzer returns deterministic results derived from a hash of the input
// text, so repeated runs over the same comments produce identical dashboards.
type MockAnalyzer struct{}

var mockAspects = []string{"battery life", "screen", "price", "delivery", "customer service", "build quality"}

func (m MockAnalyzer) Name() string { return "mock" }

func (m MockAnalyzer) ClassifyComment(_ context.Context, text string) (models.SentimentResult, error) {
	h := utils.HashStringToUint64(text)

	labels := []string{models.SentimentPositive, models.SentimentNeutral, models.SentimentNegative}
	label := labels[int(h)%len(labels)]

	aspects := []models.AspectMention{
		{Name: mockAspects[int(h/7)%len(mockAspects)], Sentiment: label},
	}
	if h%3 == 0 {
		aspects = append(aspects, models.AspectMention{
			Name:      mockAspects[int(h/13)%len(mockAspects)],
			Sentiment: label,
		})
	}

	return finalizeResult(label, nil, aspects)
}

func (m MockAnalyzer) GenerateRecommendation(_ context.Context, pc ProductContext) (RecommendationDraft, error) {
	return RecommendationDraft{
		Issue:      fmt.Sprintf("Customers flagged recurring problems with %s", pc.Product),
		Suggestion: fmt.Sprintf("Investigate the %d sampled complaints for %s", len(pc.NegativeComments), pc.Product),
	}, nil
}
