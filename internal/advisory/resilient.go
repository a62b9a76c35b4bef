package advisory

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/pharmaguard-server/internal/domain"
)

// ResilientAdvisor wraps an Advisor with a circuit breaker. When the
// upstream model misbehaves the breaker opens and calls fail fast, letting
// the deterministic pipeline answer without waiting out timeouts.
type ResilientAdvisor struct {
	inner   domain.Advisor
	breaker *gobreaker.CircuitBreaker
}

// NewResilientAdvisor wraps an advisor with breaker settings tuned for a
// slow remote model endpoint.
func NewResilientAdvisor(inner domain.Advisor, logger *logrus.Logger) *ResilientAdvisor {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "advisory",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Advisory circuit breaker state changed")
		},
	})

	return &ResilientAdvisor{inner: inner, breaker: breaker}
}

// AssessRisk delegates through the circuit breaker.
func (r *ResilientAdvisor) AssessRisk(ctx context.Context, drug string, variants []domain.Variant, assessment *domain.RiskAssessment) (*domain.AdvisoryRisk, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.inner.AssessRisk(ctx, drug, variants, assessment)
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.AdvisoryRisk), nil
}

// Explain delegates through the circuit breaker.
func (r *ResilientAdvisor) Explain(ctx context.Context, drug string, variants []domain.Variant, assessment *domain.RiskAssessment, guideline *domain.Guideline) (*domain.Explanation, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.inner.Explain(ctx, drug, variants, assessment, guideline)
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.Explanation), nil
}

// State exposes the breaker state for health reporting.
func (r *ResilientAdvisor) State() gobreaker.State {
	return r.breaker.State()
}
