package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/feedbacklens/backend/internal/models"
)

func negClassified(seq int, product, text string, aspects ...string) Classified {
	c := Classified{
		Record: models.CommentRecord{
			ID:      fmt.Sprintf("comment-%04d", seq+1),
			Seq:     seq,
			Text:    text,
			Product: product,
		},
		Result: models.SentimentResult{Label: models.SentimentNegative, Score: -0.6},
	}
	for _, a := range aspects {
		c.Result.Aspects = append(c.Result.Aspects, models.AspectMention{Name: a, Sentiment: models.SentimentNegative})
	}
	return c
}

func TestRecommendCapsProductCount(t *testing.T) {
	stub := newStub()
	p := New(stub, Options{MaxRecommendations: 2, Backoff: time.Millisecond}, zerolog.Nop())

	snap := NewSnapshot()
	var classified []Classified
	seq := 0
	// Product-2 gets 3 negatives, Product-1 gets 2, Product-0 gets 1.
	for i := 0; i < 3; i++ {
		for j := 0; j <= i; j++ {
			c := negClassified(seq, fmt.Sprintf("Product-%d", i), fmt.Sprintf("bad experience %d with Product-%d", j, i))
			snap.Fold(c.Record, c.Result)
			classified = append(classified, c)
			seq++
		}
	}

	recs := p.recommend(context.Background(), snap, classified)
	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(recs))
	}
	if recs[0].Product != "Product-2" || recs[1].Product != "Product-1" {
		t.Fatalf("wrong products selected: %+v", recs)
	}
}

func TestRecommendOmitsFailedProduct(t *testing.T) {
	stub := newStub()
	stub.recFail["Broken"] = true
	p := testPipeline(stub)

	snap := NewSnapshot()
	var classified []Classified
	for i, product := range []string{"Broken", "Broken", "Working"} {
		c := negClassified(i, product, fmt.Sprintf("negative comment %d", i))
		snap.Fold(c.Record, c.Result)
		classified = append(classified, c)
	}

	recs := p.recommend(context.Background(), snap, classified)
	if len(recs) != 1 || recs[0].Product != "Working" {
		t.Fatalf("expected only Working, got %+v", recs)
	}
}

func TestRecommendEmptyWhenNoNegatives(t *testing.T) {
	stub := newStub()
	p := testPipeline(stub)

	snap := NewSnapshot()
	rec := models.CommentRecord{ID: "comment-0001", Seq: 0, Text: "love it", Product: "PhoneA"}
	res := models.SentimentResult{Label: models.SentimentPositive, Score: 0.6}
	snap.Fold(rec, res)

	recs := p.recommend(context.Background(), snap, []Classified{{Record: rec, Result: res}})
	if len(recs) != 0 {
		t.Fatalf("expected no recommendations, got %+v", recs)
	}
	if len(stub.recCalls) != 0 {
		t.Fatalf("generation called with no negative products")
	}
}

func TestRecommendBoundsNegativeSample(t *testing.T) {
	stub := newStub()
	p := New(stub, Options{NegativeSample: 3, Backoff: time.Millisecond}, zerolog.Nop())

	snap := NewSnapshot()
	var classified []Classified
	// Fold in reverse order to prove the sample is taken by input position,
	// not completion order.
	for i := 7; i >= 0; i-- {
		c := negClassified(i, "PhoneA", fmt.Sprintf("complaint number %d", i), "screen")
		snap.Fold(c.Record, c.Result)
		classified = append(classified, c)
	}

	recs := p.recommend(context.Background(), snap, classified)
	if len(recs) != 1 {
		t.Fatalf("expected one recommendation, got %d", len(recs))
	}
	if len(stub.recCalls) != 1 {
		t.Fatalf("expected one generation call, got %d", len(stub.recCalls))
	}
	pc := stub.recCalls[0]
	if len(pc.NegativeComments) != 3 {
		t.Fatalf("sample not bounded: %v", pc.NegativeComments)
	}
	for i, text := range pc.NegativeComments {
		want := fmt.Sprintf("complaint number %d", i)
		if text != want {
			t.Fatalf("sample out of order: got %q, want %q", text, want)
		}
	}
	if len(pc.Aspects) != 1 || pc.Aspects[0] != "screen" {
		t.Fatalf("wrong aspect context: %v", pc.Aspects)
	}
}
