package pipeline

import (
	"sort"

	"github.com/feedbacklens/backend/internal/models"
)

// DefaultTopAspects is the size of the ranked aspect table.
const DefaultTopAspects = 10

// aspectRank locates an aspect's first mention: the comment's input sequence
// number plus the mention's position inside that comment's aspect list. Folding
// keeps the minimum, so the rank is independent of fold order.
type aspectRank struct {
	seq int
	idx int
}

func (r aspectRank) before(o aspectRank) bool {
	if r.seq != o.seq {
		return r.seq < o.seq
	}
	return r.idx < o.idx
}

type aspectStat struct {
	total     int
	byLabel   models.SentimentCounts
	firstSeen aspectRank
}

type productStat struct {
	counts    models.SentimentCounts
	firstSeen int
}

// Snapshot is the running aggregate over classified comments. Fold is
// commutative: tie-break ranks are anchored to each mention's position in the
// input, not arrival order, so results may be folded in any order and produce
// the same snapshot.
type Snapshot struct {
	distribution models.SentimentCounts
	scoreSum     float64
	scoreCount   int
	aspects      map[string]*aspectStat
	products     map[string]*productStat
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		aspects:  map[string]*aspectStat{},
		products: map[string]*productStat{},
	}
}

// Fold adds one classified comment to the snapshot. Purely additive: it never
// drops or reorders a result. Not safe for concurrent use; the orchestrator
// applies results under a single-writer discipline.
func (s *Snapshot) Fold(rec models.CommentRecord, res models.SentimentResult) {
	incrementLabel(&s.distribution, res.Label)
	s.scoreSum += res.Score
	s.scoreCount++

	for i, mention := range res.Aspects {
		rank := aspectRank{seq: rec.Seq, idx: i}
		stat, ok := s.aspects[mention.Name]
		if !ok {
			stat = &aspectStat{firstSeen: rank}
			s.aspects[mention.Name] = stat
		} else if rank.before(stat.firstSeen) {
			stat.firstSeen = rank
		}
		stat.total++
		incrementLabel(&stat.byLabel, mention.Sentiment)
	}

	prod, ok := s.products[rec.Product]
	if !ok {
		prod = &productStat{firstSeen: rec.Seq}
		s.products[rec.Product] = prod
	} else if rec.Seq < prod.firstSeen {
		prod.firstSeen = rec.Seq
	}
	incrementLabel(&prod.counts, res.Label)
}

func incrementLabel(c *models.SentimentCounts, label string) {
	switch label {
	case models.SentimentPositive:
		c.Positive++
	case models.SentimentNegative:
		c.Negative++
	default:
		c.Neutral++
	}
}

func (s *Snapshot) ClassifiedCount() int {
	return s.scoreCount
}

func (s *Snapshot) Distribution() models.SentimentCounts {
	return s.distribution
}

// AverageSentiment is the true arithmetic mean of folded scores, recomputed
// from the running sum so it never drifts.
func (s *Snapshot) AverageSentiment() float64 {
	if s.scoreCount == 0 {
		return 0
	}
	return s.scoreSum / float64(s.scoreCount)
}

// TopAspects returns the n most mentioned aspects, count descending, ties
// broken by which aspect appeared earliest in the input.
func (s *Snapshot) TopAspects(n int) []models.AspectCount {
	if n <= 0 {
		n = DefaultTopAspects
	}
	type entry struct {
		name string
		stat *aspectStat
	}
	entries := make([]entry, 0, len(s.aspects))
	for name, stat := range s.aspects {
		entries = append(entries, entry{name: name, stat: stat})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].stat.total != entries[j].stat.total {
			return entries[i].stat.total > entries[j].stat.total
		}
		if entries[i].stat.firstSeen != entries[j].stat.firstSeen {
			return entries[i].stat.firstSeen.before(entries[j].stat.firstSeen)
		}
		return entries[i].name < entries[j].name
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	out := make([]models.AspectCount, 0, len(entries))
	for _, e := range entries {
		out = append(out, models.AspectCount{Aspect: e.name, Count: e.stat.total})
	}
	return out
}

// AspectSentiment exposes the per-label breakdown behind an aspect's count,
// for consumers that want to filter mentions by sentiment.
func (s *Snapshot) AspectSentiment(name string) (models.SentimentCounts, bool) {
	stat, ok := s.aspects[name]
	if !ok {
		return models.SentimentCounts{}, false
	}
	return stat.byLabel, true
}

func (s *Snapshot) ProductSentiment() map[string]models.SentimentCounts {
	out := make(map[string]models.SentimentCounts, len(s.products))
	for name, stat := range s.products {
		out[name] = stat.counts
	}
	return out
}

// ProductsByNegative ranks products by negative count descending, ties broken
// by first appearance in the input. Products without negatives are excluded.
func (s *Snapshot) ProductsByNegative() []string {
	type entry struct {
		name string
		stat *productStat
	}
	var entries []entry
	for name, stat := range s.products {
		if stat.counts.Negative > 0 {
			entries = append(entries, entry{name: name, stat: stat})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].stat.counts.Negative != entries[j].stat.counts.Negative {
			return entries[i].stat.counts.Negative > entries[j].stat.counts.Negative
		}
		return entries[i].stat.firstSeen < entries[j].stat.firstSeen
	})
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.name)
	}
	return out
}
