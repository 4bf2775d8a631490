package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/feedbacklens/backend/internal/models"
)

const classifySystemPrompt = `You analyze customer product feedback.
For the comment you receive, respond ONLY with a JSON object of this exact shape:
{
  "sentiment": "positive" | "neutral" | "negative",
  "score": <number from -1.0 (very negative) to 1.0 (very positive)>,
  "aspects": [{"name": "<product attribute or theme>", "sentiment": "positive" | "neutral" | "negative"}]
}
Aspects are named product attributes mentioned in the comment (e.g. "battery life",
"price", "customer service"). Use lowercase aspect names. If no aspect is
mentioned, return an empty aspects array. Do not include any other text.`

const recommendSystemPrompt = `You turn negative customer feedback about one product into an improvement recommendation.
Respond ONLY with a JSON object of this exact shape:
{
  "issue": "<one concise sentence naming the complaint theme>",
  "suggestion": "<one concise, actionable fix>"
}
Do not include any other text.`

func classifyUserPrompt(text string) string {
	return fmt.Sprintf("Customer comment: %q", text)
}

func recommendUserPrompt(pc ProductContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Product: %s\n", pc.Product)
	if len(pc.Aspects) > 0 {
		fmt.Fprintf(&b, "Negative aspects mentioned: %s\n", strings.Join(pc.Aspects, ", "))
	}
	b.WriteString("Negative comments:\n")
	for _, c := range pc.NegativeComments {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	return b.String()
}

// extractJSONObject pulls the first {...} out of a model reply, tolerating
// markdown code fences and surrounding prose.
func extractJSONObject(raw string) (string, bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return cleaned[start : end+1], true
}

type classifyReply struct {
	Sentiment string   `json:"sentiment"`
	Score     *float64 `json:"score"`
	Aspects   []struct {
		Name      string `json:"name"`
		Sentiment string `json:"sentiment"`
	} `json:"aspects"`
}

func parseClassification(raw string) (models.SentimentResult, error) {
	body, ok := extractJSONObject(raw)
	if !ok {
		return models.SentimentResult{}, fmt.Errorf("%w: no JSON object in reply", ErrInvalidResponse)
	}
	var reply classifyReply
	if err := json.Unmarshal([]byte(body), &reply); err != nil {
		return models.SentimentResult{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	aspects := make([]models.AspectMention, 0, len(reply.Aspects))
	for _, a := range reply.Aspects {
		aspects = append(aspects, models.AspectMention{Name: a.Name, Sentiment: a.Sentiment})
	}
	return finalizeResult(reply.Sentiment, reply.Score, aspects)
}

func parseRecommendation(raw string) (RecommendationDraft, error) {
	body, ok := extractJSONObject(raw)
	if !ok {
		return RecommendationDraft{}, fmt.Errorf("%w: no JSON object in reply", ErrInvalidResponse)
	}
	var draft RecommendationDraft
	if err := json.Unmarshal([]byte(body), &draft); err != nil {
		return RecommendationDraft{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if strings.TrimSpace(draft.Issue) == "" || strings.TrimSpace(draft.Suggestion) == "" {
		return RecommendationDraft{}, fmt.Errorf("%w: empty issue or suggestion", ErrInvalidResponse)
	}
	return draft, nil
}
