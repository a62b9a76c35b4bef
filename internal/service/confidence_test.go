package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pharmaguard-server/internal/domain"
)

func defaultModel() *ConfidenceModel {
	return NewConfidenceModel(domain.ConfidenceConfig{})
}

func TestConfidenceModel_WeightNormalization(t *testing.T) {
	model := NewConfidenceModel(domain.ConfidenceConfig{
		WeightVCF: 2, WeightCPIC: 2, WeightLLM: 4,
		QualMax: 200, DepthMax: 100,
	})
	w1, w2, w3 := model.Weights()
	assert.InDelta(t, 0.25, w1, 0.0001)
	assert.InDelta(t, 0.25, w2, 0.0001)
	assert.InDelta(t, 0.50, w3, 0.0001)

	// non-positive raw sum falls back to the default triple
	model = NewConfidenceModel(domain.ConfidenceConfig{
		WeightVCF: -1, WeightCPIC: 0.5, WeightLLM: 0.5,
	})
	w1, w2, w3 = model.Weights()
	assert.InDelta(t, 0.40, w1, 0.0001)
	assert.InDelta(t, 0.45, w2, 0.0001)
	assert.InDelta(t, 0.15, w3, 0.0001)
}

func TestConfidenceModel_VCFQualityScoreEmpty(t *testing.T) {
	assert.InDelta(t, 0.35, defaultModel().VCFQualityScore(nil), 0.0001)
}

func TestConfidenceModel_VCFQualityScoreBounds(t *testing.T) {
	model := defaultModel()

	qual := 250.0
	depth := 150
	v := domain.Variant{
		QualityScore:      &qual,
		ReadDepth:         &depth,
		Allele:            "*4",
		HasGeneAnnotation: true,
		HasStarAnnotation: true,
		HasRSIDAnnotation: true,
	}
	// everything at or above its upper bound with full annotations
	assert.InDelta(t, 1.0, model.VCFQualityScore([]domain.Variant{v}), 0.0001)

	lowQual := 10.0
	lowDepth := 5
	v = domain.Variant{QualityScore: &lowQual, ReadDepth: &lowDepth}
	// everything at or below its lower bound with no annotations
	assert.InDelta(t, 0.0, model.VCFQualityScore([]domain.Variant{v}), 0.0001)
}

func TestConfidenceModel_VCFQualityScoreMissingMetrics(t *testing.T) {
	model := defaultModel()

	// missing quality and depth use the neutral 0.60 substitute, leaving
	// only the annotation term to vary
	v := domain.Variant{
		Allele:            "*4",
		HasGeneAnnotation: true,
		HasStarAnnotation: true,
		HasRSIDAnnotation: true,
	}
	want := 0.45*0.60 + 0.35*0.60 + 0.20*1.0
	assert.InDelta(t, want, model.VCFQualityScore([]domain.Variant{v}), 0.0001)
}

func TestConfidenceModel_StarCredit(t *testing.T) {
	model := defaultModel()

	// inferred star allele without explicit annotation earns half credit
	v := domain.Variant{Allele: "*4"}
	want := 0.45*0.60 + 0.35*0.60 + 0.20*(0.5/3.0)
	assert.InDelta(t, want, model.VCFQualityScore([]domain.Variant{v}), 0.0001)

	// non-star allele designation earns none
	v = domain.Variant{Allele: "HapB3"}
	want = 0.45*0.60 + 0.35*0.60
	assert.InDelta(t, want, model.VCFQualityScore([]domain.Variant{v}), 0.0001)
}

func TestConfidenceModel_GuidelineScore(t *testing.T) {
	model := defaultModel()

	tests := []struct {
		level domain.CPICLevel
		want  float64
	}{
		{domain.CPICLevelA, 1.00},
		{domain.CPICLevelB, 0.75},
		{domain.CPICLevelC, 0.50},
		{domain.CPICLevelD, 0.25},
		{domain.CPICLevelNA, 0.50},
		{domain.CPICLevel("a"), 1.00},
		{domain.CPICLevel(" A "), 1.00},
		{domain.CPICLevel("unrecognized"), 0.50},
		{domain.CPICLevel(""), 0.50},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, model.GuidelineScore(tt.level), 0.0001, "level %q", tt.level)
	}
}

func TestConfidenceModel_NarrativeConsistency(t *testing.T) {
	model := defaultModel()

	tests := []struct {
		name        string
		label       domain.RiskLabel
		explanation *domain.Explanation
		want        float64
	}{
		{
			name:        "no explanation",
			label:       domain.LabelToxic,
			explanation: nil,
			want:        0.75,
		},
		{
			name:        "toxic label with matching avoid cue",
			label:       domain.LabelToxic,
			explanation: &domain.Explanation{Summary: "Avoid this drug entirely."},
			want:        0.92,
		},
		{
			name:        "toxic label contradicted by safe narrative",
			label:       domain.LabelToxic,
			explanation: &domain.Explanation{Summary: "This is safe at routine amounts."},
			want:        0.35,
		},
		{
			name:        "toxic label with neutral narrative",
			label:       domain.LabelToxic,
			explanation: &domain.Explanation{Summary: "Metabolite formation differs."},
			want:        0.65,
		},
		{
			name:        "adjust label with dose cue",
			label:       domain.LabelAdjust,
			explanation: &domain.Explanation{Summary: "Reduce the dose and monitor."},
			want:        0.90,
		},
		{
			name:        "safe label with standard dosing cue",
			label:       domain.LabelSafe,
			explanation: &domain.Explanation{Summary: "Standard dosing is appropriate."},
			want:        0.92,
		},
		{
			name:        "unknown label is neutral",
			label:       domain.LabelUnknown,
			explanation: &domain.Explanation{Summary: "Nothing conclusive."},
			want:        0.75,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := model.NarrativeConsistencyScore(tt.label, tt.explanation)
			assert.InDelta(t, tt.want, got, 0.0001)
		})
	}
}

func TestConfidenceModel_SelfReportedBlend(t *testing.T) {
	model := defaultModel()

	pct := 80.0
	explanation := &domain.Explanation{
		Summary:           "Avoid this drug.",
		ConfidencePercent: &pct,
	}
	want := 0.70*0.92 + 0.30*0.80
	got := model.NarrativeConsistencyScore(domain.LabelToxic, explanation)
	assert.InDelta(t, want, got, 0.0001)

	// out-of-range percentages clamp before blending
	pct = 250.0
	want = 0.70*0.92 + 0.30*1.0
	got = model.NarrativeConsistencyScore(domain.LabelToxic, explanation)
	assert.InDelta(t, want, got, 0.0001)
}

func TestConfidenceModel_ScoreBoundsAndRounding(t *testing.T) {
	model := defaultModel()

	variants := []domain.Variant{markerVariant("rs3892097", "1/1")}
	final, breakdown := model.Score(variants, domain.CPICLevelA, domain.LabelToxic, nil)

	assert.GreaterOrEqual(t, final, 0.0)
	assert.LessOrEqual(t, final, 1.0)
	for _, sub := range []float64{breakdown.QVCF, breakdown.GCPIC, breakdown.PLLM} {
		assert.GreaterOrEqual(t, sub, 0.0)
		assert.LessOrEqual(t, sub, 1.0)
	}
	assert.InDelta(t, 1.00, breakdown.GCPIC, 0.0001)
	assert.InDelta(t, 0.75, breakdown.PLLM, 0.0001)
}

func TestConfidenceModel_ScoreIdempotent(t *testing.T) {
	model := defaultModel()

	variants := []domain.Variant{markerVariant("rs4244285", "0/1")}
	explanation := &domain.Explanation{Summary: "Avoid due to toxicity risk."}

	firstFinal, firstBreakdown := model.Score(variants, domain.CPICLevelA, domain.LabelToxic, explanation)
	for i := 0; i < 5; i++ {
		final, breakdown := model.Score(variants, domain.CPICLevelA, domain.LabelToxic, explanation)
		assert.Equal(t, firstFinal, final)
		assert.Equal(t, firstBreakdown, breakdown)
	}
}
