package ai

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"

	"github.com/feedbacklens/backend/internal/models"
)

// LocalAnalyzer scores comments with the VADER lexicon, entirely offline.
// Useful for development and as a no-cost fallback; aspect extraction is
// keyword-based and coarser than the LLM providers.
type LocalAnalyzer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewLocalAnalyzer() *LocalAnalyzer {
	return &LocalAnalyzer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (a *LocalAnalyzer) Name() string { return "local" }

// aspectKeywords maps surface terms to canonical aspect names.
var aspectKeywords = map[string]string{
	"battery":     "battery life",
	"charge":      "battery life",
	"charging":    "battery life",
	"screen":      "screen",
	"display":     "screen",
	"price":       "price",
	"expensive":   "price",
	"cheap":       "price",
	"cost":        "price",
	"delivery":    "delivery",
	"shipping":    "delivery",
	"quality":     "build quality",
	"broke":       "build quality",
	"broken":      "build quality",
	"cracked":     "build quality",
	"camera":      "camera",
	"photo":       "camera",
	"service":     "customer service",
	"support":     "customer service",
	"performance": "performance",
	"slow":        "performance",
	"fast":        "performance",
	"design":      "design",
	"size":        "size",
	"sound":       "sound",
	"speaker":     "sound",
	"software":    "software",
	"app":         "software",
}

var (
	mdLinkPattern = regexp.MustCompile(`\[(.*?)\]\((https?://[^\s\)]+)\)`)
	urlPattern    = regexp.MustCompile(`https?://\S+|www\.\S+`)
	wordPattern   = regexp.MustCompile(`[a-zA-Z']+`)
)

// stripMarkup renders markdown to plain text and drops links so URL tokens
// never reach the lexicon.
func stripMarkup(input string) string {
	input = mdLinkPattern.ReplaceAllString(input, "$1")
	rendered := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plain := strings.Join(strings.Fields(string(rendered)), " ")
	return urlPattern.ReplaceAllString(plain, "")
}

func (a *LocalAnalyzer) ClassifyComment(_ context.Context, text string) (models.SentimentResult, error) {
	plain := stripMarkup(text)
	compound := a.analyzer.PolarityScores(plain).Compound

	label := models.SentimentNeutral
	if compound >= 0.20 {
		label = models.SentimentPositive
	} else if compound <= -0.20 {
		label = models.SentimentNegative
	}

	var aspects []models.AspectMention
	seen := map[string]bool{}
	for _, word := range wordPattern.FindAllString(strings.ToLower(plain), -1) {
		canonical, ok := aspectKeywords[word]
		if !ok || seen[canonical] {
			continue
		}
		seen[canonical] = true
		aspects = append(aspects, models.AspectMention{Name: canonical, Sentiment: label})
	}

	score := clampScore(compound)
	return finalizeResult(label, &score, aspects)
}

func (a *LocalAnalyzer) GenerateRecommendation(_ context.Context, pc ProductContext) (RecommendationDraft, error) {
	theme := "recurring customer complaints"
	if len(pc.Aspects) > 0 {
		theme = strings.Join(pc.Aspects, ", ")
	}
	return RecommendationDraft{
		Issue:      fmt.Sprintf("Customers report problems with %s", theme),
		Suggestion: fmt.Sprintf("Review the negative feedback for %s and prioritize fixes for %s", pc.Product, theme),
	}, nil
}
