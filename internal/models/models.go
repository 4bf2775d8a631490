package models

import "time"

const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// CommentRecord is one normalized feedback row. Seq is the row's position in
// the original input and is what first-seen tie-breaking is anchored to.
type CommentRecord struct {
	ID         string `json:"id"`
	Seq        int    `json:"seq"`
	Text       string `json:"text"`
	Product    string `json:"product"`
	CustomerID string `json:"customer_id,omitempty"`
	Date       string `json:"date,omitempty"`
}

type AspectMention struct {
	Name      string `json:"name"`
	Sentiment string `json:"sentiment"`
}

// SentimentResult is the classifier's verdict for a single comment.
type SentimentResult struct {
	CommentID string          `json:"comment_id"`
	Label     string          `json:"label"`
	Score     float64         `json:"score"`
	Aspects   []AspectMention `json:"aspects"`
}

type SentimentCounts struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

func (c SentimentCounts) Total() int {
	return c.Positive + c.Neutral + c.Negative
}

type AspectCount struct {
	Aspect string `json:"aspect"`
	Count  int    `json:"count"`
}

type Recommendation struct {
	Product    string `json:"product"`
	Issue      string `json:"issue"`
	Suggestion string `json:"suggestion"`
}

// PipelineResult is the terminal artifact handed to the web layer. Field
// names and shapes are the dashboard contract and must not change.
type PipelineResult struct {
	SentimentDistribution SentimentCounts            `json:"sentiment_distribution"`
	AverageSentiment      float64                    `json:"average_sentiment"`
	TopAspects            []AspectCount              `json:"top_aspects"`
	ProductSentiment      map[string]SentimentCounts `json:"product_sentiment"`
	Recommendations       []Recommendation           `json:"recommendations"`
}

type Run struct {
	ID         string     `json:"id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
	Status     string     `json:"status"`
	Summary    []byte     `json:"summary"`
}
