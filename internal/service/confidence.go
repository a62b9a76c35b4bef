package service

import (
	"math"
	"strings"

	"github.com/pharmaguard-server/internal/domain"
)

// Default confidence model parameters. All of them are overridable through
// configuration; the weights are renormalized to sum to one at construction.
const (
	defaultQualMin = 20.0
	defaultQualMax = 200.0
	defaultDepthMin = 10.0
	defaultDepthMax = 100.0

	defaultWeightVCF  = 0.40
	defaultWeightCPIC = 0.45
	defaultWeightLLM  = 0.15

	emptyVariantScore = 0.35
	neutralComponent  = 0.60
	noExplanationScore = 0.75
)

var cpicLevelScores = map[domain.CPICLevel]float64{
	domain.CPICLevelA:  1.00,
	domain.CPICLevelB:  0.75,
	domain.CPICLevelC:  0.50,
	domain.CPICLevelD:  0.25,
	domain.CPICLevelNA: 0.50,
}

// Cue-word sets for the narrative consistency check. The three sets are
// disjoint on purpose; a word may only ever vote for one tier.
var (
	highCues     = []string{"avoid", "toxic", "toxicity", "ineffective", "life-threatening", "severe"}
	moderateCues = []string{"adjust", "reduce", "increase", "monitor", "consider", "dose"}
	lowCues      = []string{"safe", "standard dose", "standard dosing", "routine", "normal"}
)

// ConfidenceModel computes the blended confidence score
//
//	C = W1*q_vcf + W2*g_cpic + W3*p_llm
//
// It is pure: identical inputs always produce identical output, and it
// performs no I/O. All tunables are fixed at construction.
type ConfidenceModel struct {
	qualMin, qualMax   float64
	depthMin, depthMax float64
	w1, w2, w3         float64
}

// NewConfidenceModel creates a ConfidenceModel from configuration. Zero
// bounds fall back to the defaults; weights are renormalized to sum to one,
// falling back to the default triple when their raw sum is non-positive.
func NewConfidenceModel(cfg domain.ConfidenceConfig) *ConfidenceModel {
	m := &ConfidenceModel{
		qualMin:  cfg.QualMin,
		qualMax:  cfg.QualMax,
		depthMin: cfg.DepthMin,
		depthMax: cfg.DepthMax,
	}
	if m.qualMax <= 0 {
		m.qualMin, m.qualMax = defaultQualMin, defaultQualMax
	}
	if m.depthMax <= 0 {
		m.depthMin, m.depthMax = defaultDepthMin, defaultDepthMax
	}

	w1, w2, w3 := cfg.WeightVCF, cfg.WeightCPIC, cfg.WeightLLM
	if w1 == 0 && w2 == 0 && w3 == 0 {
		w1, w2, w3 = defaultWeightVCF, defaultWeightCPIC, defaultWeightLLM
	}
	sum := w1 + w2 + w3
	if sum > 0 {
		m.w1, m.w2, m.w3 = w1/sum, w2/sum, w3/sum
	} else {
		m.w1, m.w2, m.w3 = defaultWeightVCF, defaultWeightCPIC, defaultWeightLLM
	}
	return m
}

// Weights returns the active normalized blend weights.
func (m *ConfidenceModel) Weights() (float64, float64, float64) {
	return m.w1, m.w2, m.w3
}

// Parameters exposes the active model parameters for response metadata.
func (m *ConfidenceModel) Parameters() map[string]float64 {
	return map[string]float64{
		"w_vcf":    round3(m.w1),
		"w_cpic":   round3(m.w2),
		"w_llm":    round3(m.w3),
		"qual_min": round3(m.qualMin),
		"qual_max": round3(m.qualMax),
		"dp_min":   round3(m.depthMin),
		"dp_max":   round3(m.depthMax),
	}
}

// Score computes the final blended confidence and its three sub-scores.
// The final score is rounded to 2 decimals, the sub-scores to 3.
func (m *ConfidenceModel) Score(variants []domain.Variant, level domain.CPICLevel, label domain.RiskLabel, explanation *domain.Explanation) (float64, domain.ConfidenceBreakdown) {
	qVCF := m.VCFQualityScore(variants)
	gCPIC := m.GuidelineScore(level)
	pLLM := m.NarrativeConsistencyScore(label, explanation)

	final := clamp01(m.w1*qVCF + m.w2*gCPIC + m.w3*pLLM)
	return round2(final), domain.ConfidenceBreakdown{
		QVCF:  round3(qVCF),
		GCPIC: round3(gCPIC),
		PLLM:  round3(pLLM),
	}
}

// VCFQualityScore computes q_vcf from per-variant quality, depth, and
// annotation completeness. An empty variant list scores a fixed 0.35.
func (m *ConfidenceModel) VCFQualityScore(variants []domain.Variant) float64 {
	if len(variants) == 0 {
		return emptyVariantScore
	}

	var qualSum, depthSum, annSum float64
	for _, v := range variants {
		qualSum += m.normalizeQual(v.QualityScore)
		depthSum += m.normalizeDepth(v.ReadDepth)

		// Explicit STAR annotations get full credit; a star-prefixed
		// allele designation alone is only inferred, half credit.
		starCredit := 0.0
		switch {
		case v.HasStarAnnotation:
			starCredit = 1.0
		case strings.HasPrefix(v.Allele, "*"):
			starCredit = 0.5
		}
		annSum += (boolScore(v.HasGeneAnnotation) + starCredit + boolScore(v.HasRSIDAnnotation)) / 3.0
	}

	n := float64(len(variants))
	return clamp01(0.45*(qualSum/n) + 0.35*(depthSum/n) + 0.20*(annSum/n))
}

// GuidelineScore computes g_cpic by direct table lookup on the CPIC level.
func (m *ConfidenceModel) GuidelineScore(level domain.CPICLevel) float64 {
	normalized := domain.CPICLevel(strings.ToUpper(strings.TrimSpace(string(level))))
	if score, ok := cpicLevelScores[normalized]; ok {
		return score
	}
	return 0.50
}

// NarrativeConsistencyScore computes p_llm: a lexical cross-check between
// the deterministic risk label and the advisory narrative, optionally
// blended with the advisory's self-reported confidence percentage.
func (m *ConfidenceModel) NarrativeConsistencyScore(label domain.RiskLabel, explanation *domain.Explanation) float64 {
	if explanation == nil {
		return noExplanationScore
	}

	text := strings.ToLower(explanation.Summary + " " + explanation.Mechanism)
	hasHigh := containsAny(text, highCues)
	hasModerate := containsAny(text, moderateCues)
	hasLow := containsAny(text, lowCues)

	labelText := strings.ToLower(string(label))
	base := 0.75
	switch {
	case strings.Contains(labelText, "toxic") || strings.Contains(labelText, "ineffective"):
		switch {
		case hasHigh:
			base = 0.92
		case hasLow:
			base = 0.35
		default:
			base = 0.65
		}
	case strings.Contains(labelText, "adjust"):
		switch {
		case hasModerate:
			base = 0.90
		case hasHigh:
			base = 0.45
		default:
			base = 0.65
		}
	case strings.Contains(labelText, "safe"):
		switch {
		case hasLow:
			base = 0.92
		case hasHigh:
			base = 0.35
		default:
			base = 0.65
		}
	}

	if explanation.ConfidencePercent != nil {
		base = 0.70*base + 0.30*clamp01(*explanation.ConfidencePercent/100.0)
	}
	return clamp01(base)
}

func (m *ConfidenceModel) normalizeQual(qual *float64) float64 {
	if qual == nil {
		return neutralComponent
	}
	return normalizeLinear(*qual, m.qualMin, m.qualMax)
}

func (m *ConfidenceModel) normalizeDepth(depth *int) float64 {
	if depth == nil {
		return neutralComponent
	}
	return normalizeLinear(float64(*depth), m.depthMin, m.depthMax)
}

func normalizeLinear(v, lo, hi float64) float64 {
	if v <= lo {
		return 0.0
	}
	if v >= hi {
		return 1.0
	}
	denom := math.Max(1.0, hi-lo)
	return clamp01((v - lo) / denom)
}

func containsAny(text string, cues []string) bool {
	for _, cue := range cues {
		if strings.Contains(text, cue) {
			return true
		}
	}
	return false
}

func boolScore(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
