package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pharmaguard-server/internal/domain"
)

// DrugAnalysis is the full pipeline result for one drug: the final risk
// assessment, the advisory narrative, the blended confidence, and its
// sub-scores.
type DrugAnalysis struct {
	Assessment  *domain.RiskAssessment
	Explanation *domain.Explanation
	Breakdown   domain.ConfidenceBreakdown
}

// Analyzer orchestrates the analysis pipeline. The rule engine and the
// confidence model are mandatory; advisor and guideline store are optional
// collaborators whose failures degrade to deterministic output, never to an
// error.
type Analyzer struct {
	engine     *RuleEngine
	confidence *ConfidenceModel
	advisor    domain.Advisor
	store      domain.GuidelineStore
	logger     *logrus.Logger
}

// NewAnalyzer creates a new Analyzer. advisor and store may be nil.
func NewAnalyzer(engine *RuleEngine, confidence *ConfidenceModel, advisor domain.Advisor, store domain.GuidelineStore, logger *logrus.Logger) *Analyzer {
	return &Analyzer{
		engine:     engine,
		confidence: confidence,
		advisor:    advisor,
		store:      store,
		logger:     logger,
	}
}

// ConfidenceParameters exposes the active confidence model tunables.
func (a *Analyzer) ConfidenceParameters() map[string]float64 {
	return a.confidence.Parameters()
}

// SupportedDrugs returns the drugs the deterministic engine covers.
func (a *Analyzer) SupportedDrugs() []string {
	drugs := a.engine.SupportedDrugs()
	sort.Strings(drugs)
	return drugs
}

// AnalyzeDrug runs the full pipeline for one drug. The deterministic engine
// always runs; advisory output, when available, takes precedence for the
// clinical decision, and the blended confidence replaces the engine's static
// per-branch literal.
func (a *Analyzer) AnalyzeDrug(ctx context.Context, drug string, variants []domain.Variant) (*DrugAnalysis, error) {
	assessment, err := a.engine.Evaluate(drug, variants)
	if err != nil {
		return nil, err
	}

	if a.advisor != nil {
		if advisory, aerr := a.advisor.AssessRisk(ctx, drug, variants, assessment); aerr == nil && advisory != nil {
			a.applyAdvisoryRisk(assessment, advisory)
		} else if aerr != nil {
			a.logger.WithError(aerr).WithField("drug", assessment.Drug).
				Warn("advisory risk unavailable, using deterministic assessment")
		}
	}

	explanation := a.explain(ctx, assessment, variants)

	recommendation := ResolveRecommendation(assessment.Drug, explanationRecommendation(explanation), assessment.Recommendation)
	assessment.Recommendation = recommendation
	if explanation != nil {
		explanation.Recommendation = recommendation
	}

	final, breakdown := a.confidence.Score(variants, assessment.CPICLevel, assessment.Label, explanation)
	assessment.ConfidenceScore = final

	return &DrugAnalysis{
		Assessment:  assessment,
		Explanation: explanation,
		Breakdown:   breakdown,
	}, nil
}

// AnalyzePanel runs AnalyzeDrug for each drug in the list against the same
// variant set.
func (a *Analyzer) AnalyzePanel(ctx context.Context, drugs []string, variants []domain.Variant) ([]*DrugAnalysis, error) {
	results := make([]*DrugAnalysis, 0, len(drugs))
	for _, drug := range drugs {
		analysis, err := a.AnalyzeDrug(ctx, drug, variants)
		if err != nil {
			return nil, err
		}
		results = append(results, analysis)
	}
	return results, nil
}

// applyAdvisoryRisk overlays an advisory decision onto the deterministic
// assessment. Empty advisory fields leave the deterministic value standing.
func (a *Analyzer) applyAdvisoryRisk(assessment *domain.RiskAssessment, advisory *domain.AdvisoryRisk) {
	if advisory.Label != "" && advisory.Label != domain.LabelUnknown {
		assessment.Label = advisory.Label
	}
	if advisory.Severity != "" && advisory.Severity != domain.SeverityUnknown {
		assessment.Severity = advisory.Severity
	}
	if advisory.Phenotype != "" {
		assessment.Phenotype = advisory.Phenotype
	}
	if advisory.Diplotype != "" {
		assessment.Diplotype = advisory.Diplotype
	}
	if advisory.Gene != "" {
		assessment.Gene = advisory.Gene
	}
	if advisory.Recommendation != "" {
		assessment.Recommendation = advisory.Recommendation
	}
	if advisory.CPICLevel != "" {
		assessment.CPICLevel = advisory.CPICLevel
	}
}

// explain fetches the advisory narrative, falling back to a minimal
// deterministic summary when the advisor or its upstream is unavailable.
func (a *Analyzer) explain(ctx context.Context, assessment *domain.RiskAssessment, variants []domain.Variant) *domain.Explanation {
	var guideline *domain.Guideline
	if a.store != nil {
		g, err := a.store.GetGuideline(ctx, assessment.Drug, domain.PhenotypeCode(assessment.Phenotype))
		if err != nil {
			a.logger.WithError(err).WithFields(logrus.Fields{
				"drug":      assessment.Drug,
				"phenotype": assessment.Phenotype,
			}).Debug("no guideline entry for drug/phenotype")
		} else {
			guideline = g
		}
	}

	if a.advisor != nil {
		explanation, err := a.advisor.Explain(ctx, assessment.Drug, variants, assessment, guideline)
		if err == nil && explanation != nil {
			return explanation
		}
		if err != nil {
			a.logger.WithError(err).WithField("drug", assessment.Drug).
				Warn("advisory explanation unavailable, using fallback")
		}
	}

	return FallbackExplanation(assessment, guideline, variants)
}

// FallbackExplanation builds a deterministic narrative when no advisory
// output is available. A guideline entry, when present, grounds the text;
// otherwise the summary is generic.
func FallbackExplanation(assessment *domain.RiskAssessment, guideline *domain.Guideline, variants []domain.Variant) *domain.Explanation {
	explanation := &domain.Explanation{
		Summary:   fmt.Sprintf("Patient exhibits %s phenotype for %s.", assessment.Phenotype, assessment.Drug),
		Mechanism: "Advisory explanation unavailable. Please refer to CPIC guidelines.",
	}
	if guideline != nil {
		if guideline.Summary != "" {
			explanation.Summary = guideline.Summary
		}
		if guideline.Mechanism != "" {
			explanation.Mechanism = guideline.Mechanism
		}
		explanation.Recommendation = guideline.Recommendation
	}
	explanation.AttachCitations(guideline, variants)
	return explanation
}

// ResolveRecommendation guarantees non-empty recommendation text through a
// fixed precedence chain: advisory narrative, then deterministic engine,
// then the curated per-drug CPIC fallback action.
func ResolveRecommendation(drug, primary, secondary string) string {
	if text := strings.TrimSpace(primary); text != "" {
		return text
	}
	if text := strings.TrimSpace(secondary); text != "" {
		return text
	}
	if action, ok := domain.CPICFallbackActions[domain.NormalizeDrug(drug)]; ok {
		return action
	}
	return domain.GenericFallbackAction
}

func explanationRecommendation(explanation *domain.Explanation) string {
	if explanation == nil {
		return ""
	}
	return explanation.Recommendation
}

// DetectBottlenecks flags genes that multiple prescribed drugs compete for.
// Phenotype here is a simplified per-gene readout from raw zygosity, not
// the full classifier output; it only grades the warning severity.
func DetectBottlenecks(drugs []string, variants []domain.Variant) []domain.BottleneckWarning {
	geneCounts := make(map[string]int)
	drugGenes := make(map[string][]string)
	for _, drug := range drugs {
		name := domain.NormalizeDrug(drug)
		genes := domain.DrugGenePanels[name]
		drugGenes[name] = genes
		for _, gene := range genes {
			geneCounts[gene]++
		}
	}

	genePhenotypes := make(map[string]string)
	for _, v := range variants {
		if v.Gene == "" {
			continue
		}
		if _, seen := genePhenotypes[v.Gene]; seen {
			continue
		}
		switch v.Zygosity {
		case domain.ZygosityHomAlt:
			genePhenotypes[v.Gene] = PhenotypePoor
		case domain.ZygosityHet:
			genePhenotypes[v.Gene] = PhenotypeIntermediate
		default:
			genePhenotypes[v.Gene] = PhenotypeNormal
		}
	}

	genes := make([]string, 0, len(geneCounts))
	for gene := range geneCounts {
		genes = append(genes, gene)
	}
	sort.Strings(genes)

	var warnings []domain.BottleneckWarning
	for _, gene := range genes {
		count := geneCounts[gene]
		if count < 2 {
			continue
		}

		var competing []string
		for _, drug := range drugs {
			name := domain.NormalizeDrug(drug)
			for _, g := range drugGenes[name] {
				if g == gene {
					competing = append(competing, name)
					break
				}
			}
		}

		phenotype, ok := genePhenotypes[gene]
		if !ok {
			phenotype = PhenotypeUnknown
		}

		severity := domain.SeverityModerate
		riskLevel := "medium"
		var note string
		switch {
		case count >= 3:
			severity = domain.SeverityCritical
			riskLevel = "high"
			note = fmt.Sprintf("CRITICAL: %d drugs competing for %s. This creates a severe metabolic bottleneck even in normal metabolizers. Consider alternative therapies.", count, gene)
		case phenotype == PhenotypePoor || phenotype == PhenotypeIntermediate:
			severity = domain.SeverityHigh
			riskLevel = "high"
			note = fmt.Sprintf("HIGH RISK: Multiple drugs (%d) utilizing %s. Patient's %s status compounds this risk. Monitor closely.", count, gene, phenotype)
		default:
			note = fmt.Sprintf("MODERATE RISK: %d drugs competing for %s. May reduce metabolic capacity. Consider monitoring drug levels.", count, gene)
		}

		warnings = append(warnings, domain.BottleneckWarning{
			Gene:             gene,
			CompetingDrugs:   competing,
			Count:            count,
			Severity:         severity,
			RiskLevel:        riskLevel,
			PatientPhenotype: phenotype,
			Warning:          fmt.Sprintf("Metabolic bottleneck detected: %d drugs competing for %s enzyme", count, gene),
			ClinicalNote:     note,
		})
	}

	return warnings
}
