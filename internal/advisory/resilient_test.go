package advisory

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmaguard-server/internal/domain"
)

type flakyAdvisor struct {
	err   error
	calls int
}

func (f *flakyAdvisor) AssessRisk(ctx context.Context, drug string, variants []domain.Variant, assessment *domain.RiskAssessment) (*domain.AdvisoryRisk, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &domain.AdvisoryRisk{Label: domain.LabelSafe}, nil
}

func (f *flakyAdvisor) Explain(ctx context.Context, drug string, variants []domain.Variant, assessment *domain.RiskAssessment, guideline *domain.Guideline) (*domain.Explanation, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Explanation{Summary: "ok"}, nil
}

func TestResilientAdvisor_PassesThrough(t *testing.T) {
	inner := &flakyAdvisor{}
	resilient := NewResilientAdvisor(inner, testLogger())

	risk, err := resilient.AssessRisk(context.Background(), "codeine", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.LabelSafe, risk.Label)

	explanation, err := resilient.Explain(context.Background(), "codeine", nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", explanation.Summary)
	assert.Equal(t, gobreaker.StateClosed, resilient.State())
}

func TestResilientAdvisor_OpensAfterRepeatedFailures(t *testing.T) {
	inner := &flakyAdvisor{err: errors.New("model down")}
	resilient := NewResilientAdvisor(inner, testLogger())

	for i := 0; i < 5; i++ {
		_, err := resilient.AssessRisk(context.Background(), "codeine", nil, nil)
		assert.Error(t, err)
	}

	assert.Equal(t, gobreaker.StateOpen, resilient.State())

	// Open breaker fails fast without reaching the inner advisor.
	before := inner.calls
	_, err := resilient.AssessRisk(context.Background(), "codeine", nil, nil)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, before, inner.calls)
}

func TestFakeAdvisor(t *testing.T) {
	fake := NewFakeAdvisor()
	assessment := &domain.RiskAssessment{
		Drug: "CODEINE", Gene: "CYP2D6", Diplotype: "*4/*4",
		Phenotype: "Poor Metabolizer", Label: domain.LabelToxic,
		Severity: domain.SeverityHigh, CPICLevel: domain.CPICLevelA,
		Recommendation: "AVOID codeine.",
	}

	risk, err := fake.AssessRisk(context.Background(), "codeine", nil, assessment)
	require.NoError(t, err)
	assert.Equal(t, domain.LabelToxic, risk.Label)
	assert.Equal(t, "*4/*4", risk.Diplotype)

	explanation, err := fake.Explain(context.Background(), "codeine", nil, assessment, nil)
	require.NoError(t, err)
	assert.Contains(t, explanation.Summary, "Poor Metabolizer")
	require.Len(t, explanation.GuidelineCitations, 1)
	assert.Equal(t, "cpic_reference", explanation.GuidelineCitations[0].Type)
}
