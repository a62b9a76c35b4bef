package advisory

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/pharmaguard-server/internal/domain"
)

const defaultNarrativeTTL = 24 * time.Hour

// CachedAdvisor caches narrative explanations in redis. Explanations are
// keyed by the genomic inputs that determine them, so identical profiles
// skip the model entirely. Risk assessments are never cached; they feed the
// per-request overlay and are cheap to regenerate relative to their value.
type CachedAdvisor struct {
	inner domain.Advisor
	redis *redis.Client
	ttl   time.Duration
	log   *logrus.Logger
}

// NewCachedAdvisor wraps an advisor with a redis narrative cache. The redis
// connection is verified up front.
func NewCachedAdvisor(inner domain.Advisor, config domain.CacheConfig, logger *logrus.Logger) (*CachedAdvisor, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}
	if config.PoolTimeout > 0 {
		opts.PoolTimeout = config.PoolTimeout
	}
	if config.MaxRetries > 0 {
		opts.MaxRetries = config.MaxRetries
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := config.DefaultTTL
	if ttl <= 0 {
		ttl = defaultNarrativeTTL
	}

	return &CachedAdvisor{inner: inner, redis: client, ttl: ttl, log: logger}, nil
}

// AssessRisk passes through to the inner advisor.
func (c *CachedAdvisor) AssessRisk(ctx context.Context, drug string, variants []domain.Variant, assessment *domain.RiskAssessment) (*domain.AdvisoryRisk, error) {
	return c.inner.AssessRisk(ctx, drug, variants, assessment)
}

// Explain returns a cached narrative when the same drug, diplotype, and
// phenotype were explained before; otherwise it calls through and caches
// the result. Cache failures degrade to the inner advisor.
func (c *CachedAdvisor) Explain(ctx context.Context, drug string, variants []domain.Variant, assessment *domain.RiskAssessment, guideline *domain.Guideline) (*domain.Explanation, error) {
	key := narrativeKey(drug, assessment)

	if val, err := c.redis.Get(ctx, key).Result(); err == nil {
		var cached domain.Explanation
		if jerr := json.Unmarshal([]byte(val), &cached); jerr == nil {
			return &cached, nil
		}
		// Corrupted entry, drop it and regenerate.
		c.redis.Del(ctx, key)
	} else if err != redis.Nil {
		c.log.WithError(err).Debug("narrative cache read failed")
	}

	explanation, err := c.inner.Explain(ctx, drug, variants, assessment, guideline)
	if err != nil {
		return nil, err
	}

	if data, jerr := json.Marshal(explanation); jerr == nil {
		if serr := c.redis.Set(ctx, key, data, c.ttl).Err(); serr != nil {
			c.log.WithError(serr).Debug("narrative cache write failed")
		}
	}
	return explanation, nil
}

// Close releases the redis connection.
func (c *CachedAdvisor) Close() error {
	return c.redis.Close()
}

// narrativeKey hashes the inputs that determine a narrative.
func narrativeKey(drug string, assessment *domain.RiskAssessment) string {
	seed := fmt.Sprintf("%s|%s|%s|%s",
		domain.NormalizeDrug(drug), assessment.Gene, assessment.Diplotype, assessment.Phenotype)
	sum := sha256.Sum256([]byte(seed))
	return fmt.Sprintf("advisory:narrative:%x", sum)
}
