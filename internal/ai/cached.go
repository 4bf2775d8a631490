package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/feedbacklens/backend/internal/models"
)

// CachedAnalyzer memoizes classifications in redis, keyed by a hash of the
// comment text. Recommendations are not cached: their context includes the
// whole negative sample and rarely repeats. Cache failures fall through to the
// wrapped analyzer, never to the caller.
type CachedAnalyzer struct {
	inner  Analyzer
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func NewCachedAnalyzer(inner Analyzer, redisURL string, ttl time.Duration, logger zerolog.Logger) (*CachedAnalyzer, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &CachedAnalyzer{
		inner:  inner,
		client: redis.NewClient(opts),
		ttl:    ttl,
		logger: logger,
	}, nil
}

func (c *CachedAnalyzer) Name() string { return c.inner.Name() }

func classifyKey(provider, text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("classify:%s:%s", provider, hex.EncodeToString(sum[:]))
}

func (c *CachedAnalyzer) ClassifyComment(ctx context.Context, text string) (models.SentimentResult, error) {
	key := classifyKey(c.inner.Name(), text)

	cached, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var res models.SentimentResult
		if jsonErr := json.Unmarshal(cached, &res); jsonErr == nil {
			return res, nil
		}
	} else if err != redis.Nil {
		c.logger.Warn().Err(err).Msg("classification cache read failed")
	}

	res, err := c.inner.ClassifyComment(ctx, text)
	if err != nil {
		return models.SentimentResult{}, err
	}

	if payload, jsonErr := json.Marshal(res); jsonErr == nil {
		if setErr := c.client.Set(ctx, key, payload, c.ttl).Err(); setErr != nil {
			c.logger.Warn().Err(setErr).Msg("classification cache write failed")
		}
	}
	return res, nil
}

func (c *CachedAnalyzer) GenerateRecommendation(ctx context.Context, pc ProductContext) (RecommendationDraft, error) {
	return c.inner.GenerateRecommendation(ctx, pc)
}
