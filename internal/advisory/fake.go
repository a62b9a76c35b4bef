package advisory

import (
	"context"
	"fmt"

	"github.com/pharmaguard-server/internal/domain"
)

// FakeAdvisor is a deterministic Advisor for development and tests. It
// never changes the clinical decision; it only produces a plausible
// narrative so the full response shape can be exercised offline.
type FakeAdvisor struct{}

// NewFakeAdvisor creates a FakeAdvisor.
func NewFakeAdvisor() *FakeAdvisor {
	return &FakeAdvisor{}
}

// AssessRisk reflects the deterministic assessment back unchanged.
func (f *FakeAdvisor) AssessRisk(ctx context.Context, drug string, variants []domain.Variant, assessment *domain.RiskAssessment) (*domain.AdvisoryRisk, error) {
	return &domain.AdvisoryRisk{
		Label:             assessment.Label,
		Severity:          assessment.Severity,
		Phenotype:         assessment.Phenotype,
		Diplotype:         assessment.Diplotype,
		Gene:              assessment.Gene,
		Recommendation:    assessment.Recommendation,
		CPICLevel:         assessment.CPICLevel,
		ConfidencePercent: 70,
	}, nil
}

// Explain produces a guideline-grounded narrative without a model call.
func (f *FakeAdvisor) Explain(ctx context.Context, drug string, variants []domain.Variant, assessment *domain.RiskAssessment, guideline *domain.Guideline) (*domain.Explanation, error) {
	explanation := &domain.Explanation{
		Summary:   fmt.Sprintf("Patient exhibits %s phenotype for %s.", assessment.Phenotype, domain.NormalizeDrug(drug)),
		Mechanism: fmt.Sprintf("%s diplotype %s alters drug metabolism.", assessment.Gene, assessment.Diplotype),
	}
	if guideline != nil {
		explanation.Summary = guideline.Summary
		explanation.Mechanism = guideline.Mechanism
		explanation.Recommendation = guideline.Recommendation
	}
	explanation.AttachCitations(guideline, variants)
	return explanation, nil
}
