package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/feedbacklens/backend/internal/ai"
	"github.com/feedbacklens/backend/internal/models"
)

// Stage names the orchestrator's states. Progress is monotonic; Failed is
// reachable only from Normalizing.
type Stage string

const (
	StageIdle         Stage = "idle"
	StageNormalizing  Stage = "normalizing"
	StageClassifying  Stage = "classifying"
	StageAggregating  Stage = "aggregating"
	StageRecommending Stage = "recommending"
	StageComplete     Stage = "complete"
	StageFailed       Stage = "failed"
)

const (
	DefaultWorkers = 5
	DefaultRetries = 3
	defaultBackoff = 500 * time.Millisecond
)

type Options struct {
	Workers            int
	Retries            int
	Backoff            time.Duration
	TopAspects         int
	MaxRecommendations int
	NegativeSample     int
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.Retries <= 0 {
		o.Retries = DefaultRetries
	}
	if o.Backoff <= 0 {
		o.Backoff = defaultBackoff
	}
	if o.TopAspects <= 0 {
		o.TopAspects = DefaultTopAspects
	}
	if o.MaxRecommendations <= 0 {
		o.MaxRecommendations = DefaultMaxRecommendations
	}
	if o.NegativeSample <= 0 {
		o.NegativeSample = DefaultNegativeSample
	}
	return o
}

// Pipeline runs one batch end to end. It holds no per-batch state: every Run
// call is independent and the same Pipeline may serve concurrent batches.
type Pipeline struct {
	analyzer ai.Analyzer
	opts     Options
	logger   zerolog.Logger
}

func New(analyzer ai.Analyzer, opts Options, logger zerolog.Logger) *Pipeline {
	return &Pipeline{analyzer: analyzer, opts: opts.withDefaults(), logger: logger}
}

// Classified pairs a comment with its sentiment verdict.
type Classified struct {
	Record models.CommentRecord
	Result models.SentimentResult
}

// Summary reports what happened to a batch, for run records and logs.
type Summary struct {
	Stage           Stage  `json:"stage"`
	Provider        string `json:"provider"`
	TotalRows       int    `json:"total_rows"`
	SkippedRows     int    `json:"skipped_rows"`
	Classified      int    `json:"classified"`
	Failed          int    `json:"classification_failures"`
	Recommendations int    `json:"recommendations"`
	ElapsedMs       int64  `json:"elapsed_ms"`
}

// Run executes normalization, classification, aggregation and recommendation
// over one batch. Only a SchemaError aborts the batch; classification and
// generation failures degrade the result's completeness but the returned
// PipelineResult is always internally consistent.
func (p *Pipeline) Run(ctx context.Context, table RawTable) (models.PipelineResult, Summary, error) {
	start := time.Now()
	summary := Summary{Stage: StageNormalizing, Provider: p.analyzer.Name(), TotalRows: len(table.Rows)}

	records, skipped, err := Normalize(table)
	summary.SkippedRows = skipped
	if err != nil {
		summary.Stage = StageFailed
		summary.ElapsedMs = time.Since(start).Milliseconds()
		return models.PipelineResult{}, summary, err
	}

	summary.Stage = StageClassifying
	classified, failed := p.classifyAll(ctx, records)
	summary.Failed = failed

	summary.Stage = StageAggregating
	snap := NewSnapshot()
	for _, c := range classified {
		snap.Fold(c.Record, c.Result)
	}
	summary.Classified = snap.ClassifiedCount()

	summary.Stage = StageRecommending
	recommendations := p.recommend(ctx, snap, classified)
	summary.Recommendations = len(recommendations)

	result := models.PipelineResult{
		SentimentDistribution: snap.Distribution(),
		AverageSentiment:      snap.AverageSentiment(),
		TopAspects:            snap.TopAspects(p.opts.TopAspects),
		ProductSentiment:      snap.ProductSentiment(),
		Recommendations:       recommendations,
	}

	summary.Stage = StageComplete
	summary.ElapsedMs = time.Since(start).Milliseconds()
	p.logger.Info().
		Str("provider", summary.Provider).
		Int("classified", summary.Classified).
		Int("failed", summary.Failed).
		Int("skipped", summary.SkippedRows).
		Int("recommendations", summary.Recommendations).
		Int64("elapsed_ms", summary.ElapsedMs).
		Msg("batch complete")
	return result, summary, nil
}

type classifyOutcome struct {
	record models.CommentRecord
	result models.SentimentResult
	err    error
}

// classifyAll fans records out to a bounded worker pool and collects outcomes
// on a single channel, so the caller folds under a single writer. Completion
// order is irrelevant to the aggregate. A cancelled context abandons remaining
// work; abandoned comments count as failures.
func (p *Pipeline) classifyAll(ctx context.Context, records []models.CommentRecord) ([]Classified, int) {
	jobs := make(chan models.CommentRecord)
	outcomes := make(chan classifyOutcome)

	var wg sync.WaitGroup
	workers := p.opts.Workers
	if workers > len(records) {
		workers = len(records)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				res, err := p.classifyWithRetry(ctx, rec.Text)
				if err == nil {
					res.CommentID = rec.ID
				}
				outcomes <- classifyOutcome{record: rec, result: res, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, rec := range records {
			select {
			case jobs <- rec:
			case <-ctx.Done():
				// Remaining records are reported as failures by the
				// collector's accounting below.
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	classified := make([]Classified, 0, len(records))
	for out := range outcomes {
		if out.err != nil {
			p.logger.Warn().Err(out.err).Str("comment_id", out.record.ID).Msg("classification failed, excluding comment")
			continue
		}
		classified = append(classified, Classified{Record: out.record, Result: out.result})
	}

	// Failures include comments never dispatched because the batch timed out.
	return classified, len(records) - len(classified)
}

// classifyWithRetry retries transient failures with exponential backoff,
// honoring a server-provided retry-after when the service is rate limiting.
func (p *Pipeline) classifyWithRetry(ctx context.Context, text string) (models.SentimentResult, error) {
	var lastErr error
	for attempt := 0; attempt < p.opts.Retries; attempt++ {
		if attempt > 0 {
			delay := p.opts.Backoff << (attempt - 1)
			var rl ai.RateLimitError
			if errors.As(lastErr, &rl) && rl.RetryAfter > delay {
				delay = rl.RetryAfter
			}
			select {
			case <-ctx.Done():
				return models.SentimentResult{}, ctx.Err()
			case <-time.After(delay):
			}
		}

		res, err := p.analyzer.ClassifyComment(ctx, text)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !ai.IsRetryable(err) {
			break
		}
	}
	return models.SentimentResult{}, lastErr
}
