package pipeline

import (
	"math"
	"math/rand"
	"testing"

	"github.com/feedbacklens/backend/internal/models"
)

func foldAll(s *Snapshot, items []Classified) {
	for _, c := range items {
		s.Fold(c.Record, c.Result)
	}
}

func sampleClassified() []Classified {
	return []Classified{
		{
			Record: models.CommentRecord{ID: "c1", Seq: 0, Product: "PhoneA"},
			Result: models.SentimentResult{Label: models.SentimentPositive, Score: 0.8, Aspects: []models.AspectMention{
				{Name: "battery life", Sentiment: models.SentimentPositive},
			}},
		},
		{
			Record: models.CommentRecord{ID: "c2", Seq: 1, Product: "PhoneA"},
			Result: models.SentimentResult{Label: models.SentimentNegative, Score: -0.7, Aspects: []models.AspectMention{
				{Name: "screen", Sentiment: models.SentimentNegative},
				{Name: "build quality", Sentiment: models.SentimentNegative},
			}},
		},
		{
			Record: models.CommentRecord{ID: "c3", Seq: 2, Product: "PhoneB"},
			Result: models.SentimentResult{Label: models.SentimentNeutral, Score: 0.1, Aspects: []models.AspectMention{
				{Name: "battery life", Sentiment: models.SentimentNeutral},
			}},
		},
		{
			Record: models.CommentRecord{ID: "c4", Seq: 3, Product: "PhoneB"},
			Result: models.SentimentResult{Label: models.SentimentNegative, Score: -0.3, Aspects: []models.AspectMention{
				{Name: "screen", Sentiment: models.SentimentNegative},
			}},
		},
	}
}

func TestFoldDistributionAndMean(t *testing.T) {
	snap := NewSnapshot()
	foldAll(snap, sampleClassified())

	dist := snap.Distribution()
	if dist.Positive != 1 || dist.Neutral != 1 || dist.Negative != 2 {
		t.Fatalf("wrong distribution: %+v", dist)
	}
	if dist.Total() != snap.ClassifiedCount() {
		t.Fatalf("distribution total %d != classified count %d", dist.Total(), snap.ClassifiedCount())
	}

	want := (0.8 - 0.7 + 0.1 - 0.3) / 4.0
	if math.Abs(snap.AverageSentiment()-want) > 1e-12 {
		t.Fatalf("expected mean %f, got %f", want, snap.AverageSentiment())
	}
}

func TestFoldIsOrderIndependent(t *testing.T) {
	items := sampleClassified()
	reference := NewSnapshot()
	foldAll(reference, items)

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 10; trial++ {
		shuffled := append([]Classified(nil), items...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		snap := NewSnapshot()
		foldAll(snap, shuffled)

		if snap.Distribution() != reference.Distribution() {
			t.Fatalf("distribution differs under permutation: %+v vs %+v", snap.Distribution(), reference.Distribution())
		}
		if math.Abs(snap.AverageSentiment()-reference.AverageSentiment()) > 1e-12 {
			t.Fatalf("mean differs under permutation")
		}
		a, b := snap.TopAspects(10), reference.TopAspects(10)
		if len(a) != len(b) {
			t.Fatalf("top aspects length differs")
		}
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("top aspects differ under permutation: %+v vs %+v", a, b)
			}
		}
	}
}

func TestTopAspectsOrderingAndTies(t *testing.T) {
	snap := NewSnapshot()
	foldAll(snap, sampleClassified())

	top := snap.TopAspects(10)
	if len(top) != 3 {
		t.Fatalf("expected 3 aspects, got %d", len(top))
	}
	// battery life and screen are tied at 2; battery life was seen first (seq 0).
	if top[0].Aspect != "battery life" || top[0].Count != 2 {
		t.Fatalf("expected battery life first, got %+v", top[0])
	}
	if top[1].Aspect != "screen" || top[1].Count != 2 {
		t.Fatalf("expected screen second, got %+v", top[1])
	}
	if top[2].Aspect != "build quality" || top[2].Count != 1 {
		t.Fatalf("expected build quality last, got %+v", top[2])
	}
}

func TestTopAspectsTieWithinOneComment(t *testing.T) {
	// Both aspects are first mentioned by the same comment, so the sequence
	// number alone cannot split the tie; mention order must.
	rec := models.CommentRecord{ID: "c1", Seq: 0, Product: "PhoneA"}
	res := models.SentimentResult{Label: models.SentimentNegative, Score: -0.7, Aspects: []models.AspectMention{
		{Name: "screen", Sentiment: models.SentimentNegative},
		{Name: "battery life", Sentiment: models.SentimentNegative},
	}}

	for trial := 0; trial < 200; trial++ {
		snap := NewSnapshot()
		snap.Fold(rec, res)
		top := snap.TopAspects(10)
		if len(top) != 2 {
			t.Fatalf("expected 2 aspects, got %d", len(top))
		}
		if top[0].Aspect != "screen" || top[1].Aspect != "battery life" {
			t.Fatalf("trial %d: tie not broken by mention order: %+v", trial, top)
		}
	}
}

func TestTopAspectsTruncates(t *testing.T) {
	snap := NewSnapshot()
	foldAll(snap, sampleClassified())
	if got := len(snap.TopAspects(2)); got != 2 {
		t.Fatalf("expected 2 aspects, got %d", got)
	}
}

func TestProductTotalsMatchDistribution(t *testing.T) {
	snap := NewSnapshot()
	foldAll(snap, sampleClassified())

	var sum models.SentimentCounts
	for _, counts := range snap.ProductSentiment() {
		sum.Positive += counts.Positive
		sum.Neutral += counts.Neutral
		sum.Negative += counts.Negative
	}
	if sum != snap.Distribution() {
		t.Fatalf("product totals %+v != distribution %+v", sum, snap.Distribution())
	}
}

func TestAspectSentimentBreakdownRetained(t *testing.T) {
	snap := NewSnapshot()
	foldAll(snap, sampleClassified())

	counts, ok := snap.AspectSentiment("battery life")
	if !ok {
		t.Fatalf("expected battery life breakdown")
	}
	if counts.Positive != 1 || counts.Neutral != 1 || counts.Negative != 0 {
		t.Fatalf("wrong per-sentiment breakdown: %+v", counts)
	}
}

func TestProductsByNegativeRanking(t *testing.T) {
	snap := NewSnapshot()
	items := sampleClassified()
	foldAll(snap, items)

	// PhoneA and PhoneB each have 1 negative; PhoneA appeared first.
	ranked := snap.ProductsByNegative()
	if len(ranked) != 2 || ranked[0] != "PhoneA" || ranked[1] != "PhoneB" {
		t.Fatalf("wrong ranking: %v", ranked)
	}

	snap.Fold(
		models.CommentRecord{ID: "c5", Seq: 4, Product: "PhoneB"},
		models.SentimentResult{Label: models.SentimentNegative, Score: -0.9},
	)
	ranked = snap.ProductsByNegative()
	if ranked[0] != "PhoneB" {
		t.Fatalf("expected PhoneB first after extra negative, got %v", ranked)
	}
}
