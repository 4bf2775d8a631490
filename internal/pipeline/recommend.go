package pipeline

import (
	"context"
	"sort"

	"github.com/feedbacklens/backend/internal/ai"
	"github.com/feedbacklens/backend/internal/models"
)

const (
	// DefaultMaxRecommendations bounds external-call volume: only the worst
	// products by negative count get a generation call.
	DefaultMaxRecommendations = 5
	// DefaultNegativeSample bounds how many negative comment texts are sent
	// as context per product.
	DefaultNegativeSample = 5
)

// recommend generates issue/suggestion pairs for the worst-scoring products.
// A per-product generation failure is logged and the product omitted; an empty
// list is a valid result.
func (p *Pipeline) recommend(ctx context.Context, snap *Snapshot, classified []Classified) []models.Recommendation {
	negByProduct := map[string][]Classified{}
	for _, c := range classified {
		if c.Result.Label == models.SentimentNegative {
			negByProduct[c.Record.Product] = append(negByProduct[c.Record.Product], c)
		}
	}

	products := snap.ProductsByNegative()
	if len(products) > p.opts.MaxRecommendations {
		products = products[:p.opts.MaxRecommendations]
	}

	recommendations := make([]models.Recommendation, 0, len(products))
	for _, product := range products {
		negatives := negByProduct[product]
		sort.Slice(negatives, func(i, j int) bool {
			return negatives[i].Record.Seq < negatives[j].Record.Seq
		})

		sample := negatives
		if len(sample) > p.opts.NegativeSample {
			sample = sample[:p.opts.NegativeSample]
		}
		pc := ai.ProductContext{Product: product}
		aspectSeen := map[string]bool{}
		for _, c := range sample {
			pc.NegativeComments = append(pc.NegativeComments, c.Record.Text)
			for _, mention := range c.Result.Aspects {
				if mention.Sentiment == models.SentimentNegative && !aspectSeen[mention.Name] {
					aspectSeen[mention.Name] = true
					pc.Aspects = append(pc.Aspects, mention.Name)
				}
			}
		}

		draft, err := p.analyzer.GenerateRecommendation(ctx, pc)
		if err != nil {
			p.logger.Warn().Err(err).Str("product", product).Msg("recommendation generation failed, omitting product")
			continue
		}
		recommendations = append(recommendations, models.Recommendation{
			Product:    product,
			Issue:      draft.Issue,
			Suggestion: draft.Suggestion,
		})
	}
	return recommendations
}
