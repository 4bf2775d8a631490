package ai

import (
	"context"
	"reflect"
	"testing"

	"github.com/feedbacklens/backend/internal/models"
)

func TestMockAnalyzerDeterministic(t *testing.T) {
	m := MockAnalyzer{}
	texts := []string{
		"Great battery life on this phone",
		"Screen cracked after a week",
		"It's okay I guess",
	}
	for _, text := range texts {
		first, err := m.ClassifyComment(context.Background(), text)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i := 0; i < 3; i++ {
			again, err := m.ClassifyComment(context.Background(), text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(first, again) {
				t.Fatalf("results differ for %q: %+v vs %+v", text, first, again)
			}
		}
	}
}

func TestMockAnalyzerValidResults(t *testing.T) {
	m := MockAnalyzer{}
	valid := map[string]float64{
		models.SentimentPositive: 0.6,
		models.SentimentNeutral:  0.0,
		models.SentimentNegative: -0.6,
	}
	for _, text := range []string{"alpha comment", "beta comment", "gamma comment", "delta comment"} {
		res, err := m.ClassifyComment(context.Background(), text)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want, ok := valid[res.Label]
		if !ok {
			t.Fatalf("invalid label %q", res.Label)
		}
		if res.Score != want {
			t.Fatalf("label %s: score = %f, want %f", res.Label, res.Score, want)
		}
		if len(res.Aspects) == 0 {
			t.Fatalf("mock result carries no aspects: %+v", res)
		}
		for _, a := range res.Aspects {
			if a.Sentiment != res.Label {
				t.Fatalf("mock aspect sentiment must match the overall label: %+v", res)
			}
		}
	}
}

func TestMockAnalyzerRecommendation(t *testing.T) {
	m := MockAnalyzer{}
	draft, err := m.GenerateRecommendation(context.Background(), ProductContext{
		Product:          "PhoneA",
		NegativeComments: []string{"bad", "worse"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if draft.Issue == "" || draft.Suggestion == "" {
		t.Fatalf("got %+v", draft)
	}
}
