package ai

import (
	"context"
	"strings"
	"testing"

	"github.com/feedbacklens/backend/internal/models"
)

func TestLocalAnalyzerLabels(t *testing.T) {
	a := NewLocalAnalyzer()
	cases := []struct {
		text string
		want string
	}{
		{"I absolutely love this phone, it is fantastic!", models.SentimentPositive},
		{"This is terrible, I hate it and want a refund.", models.SentimentNegative},
		{"The package arrived on Tuesday.", models.SentimentNeutral},
	}
	for _, tc := range cases {
		res, err := a.ClassifyComment(context.Background(), tc.text)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.text, err)
		}
		if res.Label != tc.want {
			t.Fatalf("%q: label = %s, want %s", tc.text, res.Label, tc.want)
		}
		if res.Score < -1.0 || res.Score > 1.0 {
			t.Fatalf("%q: score out of range: %f", tc.text, res.Score)
		}
	}
}

func TestLocalAnalyzerExtractsAspects(t *testing.T) {
	a := NewLocalAnalyzer()
	res, err := a.ClassifyComment(context.Background(), "The battery is terrible and the screen cracked.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := map[string]bool{}
	for _, m := range res.Aspects {
		got[m.Name] = true
	}
	for _, want := range []string{"battery life", "screen", "build quality"} {
		if !got[want] {
			t.Fatalf("missing aspect %q in %+v", want, res.Aspects)
		}
	}
}

func TestLocalAnalyzerDeduplicatesAspects(t *testing.T) {
	a := NewLocalAnalyzer()
	res, err := a.ClassifyComment(context.Background(), "battery battery charging charge")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Aspects) != 1 || res.Aspects[0].Name != "battery life" {
		t.Fatalf("expected single battery life aspect, got %+v", res.Aspects)
	}
}

func TestStripMarkupDropsLinks(t *testing.T) {
	out := stripMarkup("Check [the review](https://example.com/review) at https://example.com too")
	if strings.Contains(out, "http") || strings.Contains(out, "example.com") {
		t.Fatalf("links survived: %q", out)
	}
	if !strings.Contains(out, "the review") {
		t.Fatalf("link text lost: %q", out)
	}
}

func TestLocalAnalyzerRecommendationUsesAspects(t *testing.T) {
	a := NewLocalAnalyzer()
	draft, err := a.GenerateRecommendation(context.Background(), ProductContext{
		Product:          "PhoneA",
		NegativeComments: []string{"screen cracked"},
		Aspects:          []string{"screen"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(draft.Issue, "screen") || !strings.Contains(draft.Suggestion, "PhoneA") {
		t.Fatalf("got %+v", draft)
	}
}
