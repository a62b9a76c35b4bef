package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmaguard-server/internal/domain"
)

func newTestEngine() *RuleEngine {
	logger := testLogger()
	return NewRuleEngine(NewDiplotypeResolver(logger), NewPhenotypeClassifier(logger), logger)
}

func TestRuleEngine_UnknownDrug(t *testing.T) {
	engine := newTestEngine()

	assessment, err := engine.Evaluate("ASPIRIN", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.LabelUnknown, assessment.Label)
	assert.Equal(t, domain.SeverityUnknown, assessment.Severity)
	assert.Equal(t, PhenotypeUnknown, assessment.Phenotype)
	assert.Equal(t, "*1/*1", assessment.Diplotype)
	assert.Equal(t, domain.CPICLevelNA, assessment.CPICLevel)
	assert.InDelta(t, 0.5, assessment.ConfidenceScore, 0.0001)
}

func TestRuleEngine_CodeinePoorMetabolizer(t *testing.T) {
	engine := newTestEngine()

	variants := []domain.Variant{markerVariant("rs3892097", "1/1")}
	assessment, err := engine.Evaluate("codeine", variants)
	require.NoError(t, err)

	assert.Equal(t, "CODEINE", assessment.Drug)
	assert.Equal(t, "*4/*4", assessment.Diplotype)
	assert.Equal(t, PhenotypePoor, assessment.Phenotype)
	assert.Equal(t, domain.LabelToxic, assessment.Label)
	assert.Equal(t, domain.SeverityHigh, assessment.Severity)
	assert.InDelta(t, 0.95, assessment.ConfidenceScore, 0.0001)
	assert.Contains(t, assessment.Recommendation, "AVOID codeine")
}

func TestRuleEngine_CodeineDefaultSafe(t *testing.T) {
	engine := newTestEngine()

	assessment, err := engine.Evaluate("CODEINE", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.LabelSafe, assessment.Label)
	assert.Equal(t, domain.SeverityNone, assessment.Severity)
	assert.Equal(t, "*1/*1", assessment.Diplotype)
	assert.Equal(t, PhenotypeNormal, assessment.Phenotype)
	assert.InDelta(t, 0.85, assessment.ConfidenceScore, 0.0001)
}

func TestRuleEngine_ClopidogrelTiers(t *testing.T) {
	engine := newTestEngine()

	tests := []struct {
		name     string
		variants []domain.Variant
		label    domain.RiskLabel
		severity domain.Severity
		conf     float64
	}{
		{
			name:     "poor metabolizer is ineffective",
			variants: []domain.Variant{markerVariant("rs4244285", "1/1")},
			label:    domain.LabelIneffective,
			severity: domain.SeverityHigh,
			conf:     0.95,
		},
		{
			name:     "intermediate metabolizer is ineffective at moderate severity",
			variants: []domain.Variant{markerVariant("rs4244285", "0/1")},
			label:    domain.LabelIneffective,
			severity: domain.SeverityModerate,
			conf:     0.85,
		},
		{
			name:     "rapid metabolizer gets low-severity adjustment",
			variants: []domain.Variant{markerVariant("rs12248560", "0/1")},
			label:    domain.LabelAdjust,
			severity: domain.SeverityLow,
			conf:     0.80,
		},
		{
			name:     "ultrarapid metabolizer gets low-severity adjustment",
			variants: []domain.Variant{markerVariant("rs12248560", "1/1")},
			label:    domain.LabelAdjust,
			severity: domain.SeverityLow,
			conf:     0.80,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assessment, err := engine.Evaluate("CLOPIDOGREL", tt.variants)
			require.NoError(t, err)
			assert.Equal(t, tt.label, assessment.Label)
			assert.Equal(t, tt.severity, assessment.Severity)
			assert.InDelta(t, tt.conf, assessment.ConfidenceScore, 0.0001)
		})
	}
}

func TestRuleEngine_WarfarinEscalation(t *testing.T) {
	engine := newTestEngine()

	variants := []domain.Variant{markerVariant("rs1057910", "1/1")}
	assessment, err := engine.Evaluate("WARFARIN", variants)
	require.NoError(t, err)

	assert.Equal(t, "*3/*3", assessment.Diplotype)
	assert.Equal(t, domain.LabelAdjust, assessment.Label)
	assert.Equal(t, domain.SeverityHigh, assessment.Severity)
	assert.InDelta(t, 0.95, assessment.ConfidenceScore, 0.0001)
}

func TestRuleEngine_WarfarinUncataloguedDiplotypeStaysModerate(t *testing.T) {
	engine := newTestEngine()

	// *5/*5 has no phenotype table entry, so the assessment keeps the
	// moderate default instead of escalating
	variants := []domain.Variant{markerVariant("rs28371686", "1/1")}
	assessment, err := engine.Evaluate("WARFARIN", variants)
	require.NoError(t, err)

	assert.Equal(t, "*5/*5", assessment.Diplotype)
	assert.Equal(t, PhenotypeUnknown, assessment.Phenotype)
	assert.Equal(t, domain.LabelAdjust, assessment.Label)
	assert.Equal(t, domain.SeverityModerate, assessment.Severity)
	assert.InDelta(t, 0.80, assessment.ConfidenceScore, 0.0001)
}

func TestRuleEngine_WarfarinVKORC1Append(t *testing.T) {
	engine := newTestEngine()

	vkorc1 := domain.Variant{
		RSID:     "rs9923231",
		Gene:     "VKORC1",
		Genotype: "0/1",
		Zygosity: domain.ZygosityHet,
	}

	// appended on the default path
	assessment, err := engine.Evaluate("WARFARIN", []domain.Variant{vkorc1})
	require.NoError(t, err)
	assert.Contains(t, assessment.Recommendation, "VKORC1 variant detected - consider 40-50% dose reduction.")

	// and on escalated paths too
	variants := []domain.Variant{markerVariant("rs1057910", "1/1"), vkorc1}
	assessment, err = engine.Evaluate("WARFARIN", variants)
	require.NoError(t, err)
	assert.Equal(t, domain.SeverityHigh, assessment.Severity)
	assert.Contains(t, assessment.Recommendation, "VKORC1 variant detected")
}

func TestRuleEngine_SimvastatinZygosityTiers(t *testing.T) {
	engine := newTestEngine()

	hom, err := engine.Evaluate("SIMVASTATIN", []domain.Variant{markerVariant("rs4149056", "1/1")})
	require.NoError(t, err)
	assert.Equal(t, domain.LabelToxic, hom.Label)
	assert.Equal(t, domain.SeverityHigh, hom.Severity)
	assert.Equal(t, FunctionPoor, hom.Phenotype)
	assert.InDelta(t, 0.95, hom.ConfidenceScore, 0.0001)

	het, err := engine.Evaluate("SIMVASTATIN", []domain.Variant{markerVariant("rs4149056", "0/1")})
	require.NoError(t, err)
	assert.Equal(t, domain.LabelAdjust, het.Label)
	assert.Equal(t, FunctionIntermediate, het.Phenotype)

	// the *1b marker alone is normal function
	none, err := engine.Evaluate("SIMVASTATIN", []domain.Variant{markerVariant("rs2306283", "1/1")})
	require.NoError(t, err)
	assert.Equal(t, domain.LabelSafe, none.Label)
	assert.Equal(t, FunctionNormal, none.Phenotype)
}

func TestRuleEngine_AzathioprineAlleleCounting(t *testing.T) {
	engine := newTestEngine()

	tests := []struct {
		name      string
		variants  []domain.Variant
		label     domain.RiskLabel
		severity  domain.Severity
		phenotype string
		conf      float64
	}{
		{
			name:      "two variant alleles from one homozygous marker",
			variants:  []domain.Variant{markerVariant("rs1800462", "1/1")},
			label:     domain.LabelToxic,
			severity:  domain.SeverityCritical,
			phenotype: PhenotypePoor,
			conf:      0.98,
		},
		{
			name: "two variant alleles across two heterozygous markers",
			variants: []domain.Variant{
				markerVariant("rs1800460", "0/1"),
				markerVariant("rs1142345", "0/1"),
			},
			label:     domain.LabelToxic,
			severity:  domain.SeverityCritical,
			phenotype: PhenotypePoor,
			conf:      0.98,
		},
		{
			// the toxic branch requires exactly two variant alleles
			name: "four variant alleles from two homozygous markers",
			variants: []domain.Variant{
				markerVariant("rs1800460", "1/1"),
				markerVariant("rs1142345", "1/1"),
			},
			label:     domain.LabelSafe,
			severity:  domain.SeverityNone,
			phenotype: PhenotypeNormal,
			conf:      0.85,
		},
		{
			name:      "single variant allele",
			variants:  []domain.Variant{markerVariant("rs1142345", "0/1")},
			label:     domain.LabelAdjust,
			severity:  domain.SeverityHigh,
			phenotype: PhenotypeIntermediate,
			conf:      0.90,
		},
		{
			name:      "no variant alleles",
			variants:  nil,
			label:     domain.LabelSafe,
			severity:  domain.SeverityNone,
			phenotype: PhenotypeNormal,
			conf:      0.85,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assessment, err := engine.Evaluate("AZATHIOPRINE", tt.variants)
			require.NoError(t, err)
			assert.Equal(t, tt.label, assessment.Label)
			assert.Equal(t, tt.severity, assessment.Severity)
			assert.Equal(t, tt.phenotype, assessment.Phenotype)
			assert.InDelta(t, tt.conf, assessment.ConfidenceScore, 0.0001)
		})
	}
}

func TestRuleEngine_FluorouracilFirstMatchWins(t *testing.T) {
	engine := newTestEngine()

	// the first matching high-risk marker decides the tier even when a
	// later marker is homozygous
	variants := []domain.Variant{
		markerVariant("rs3918290", "0/1"),
		markerVariant("rs55886062", "1/1"),
	}
	assessment, err := engine.Evaluate("FLUOROURACIL", variants)
	require.NoError(t, err)

	assert.Equal(t, domain.LabelToxic, assessment.Label)
	assert.Equal(t, domain.SeverityHigh, assessment.Severity)
	assert.Equal(t, PhenotypeIntermediate, assessment.Phenotype)
	assert.InDelta(t, 0.95, assessment.ConfidenceScore, 0.0001)
}

func TestRuleEngine_FluorouracilHomozygousCritical(t *testing.T) {
	engine := newTestEngine()

	assessment, err := engine.Evaluate("FLUOROURACIL", []domain.Variant{markerVariant("rs3918290", "1/1")})
	require.NoError(t, err)

	assert.Equal(t, domain.LabelToxic, assessment.Label)
	assert.Equal(t, domain.SeverityCritical, assessment.Severity)
	assert.Equal(t, PhenotypePoor, assessment.Phenotype)
	assert.InDelta(t, 0.98, assessment.ConfidenceScore, 0.0001)
}

func TestRuleEngine_OmeprazoleRapidMetabolizer(t *testing.T) {
	engine := newTestEngine()

	assessment, err := engine.Evaluate("OMEPRAZOLE", []domain.Variant{markerVariant("rs12248560", "0/1")})
	require.NoError(t, err)

	assert.Equal(t, domain.LabelAdjust, assessment.Label)
	assert.Equal(t, domain.SeverityModerate, assessment.Severity)
	assert.Contains(t, assessment.Recommendation, "CONSIDER INCREASED omeprazole dose")
}

func TestRuleEngine_Idempotence(t *testing.T) {
	engine := newTestEngine()

	variants := []domain.Variant{
		markerVariant("rs3892097", "1/1"),
		markerVariant("rs4244285", "0/1"),
	}

	first, err := engine.Evaluate("CODEINE", variants)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := engine.Evaluate("CODEINE", variants)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRuleEngine_SupportedDrugs(t *testing.T) {
	engine := newTestEngine()
	drugs := engine.SupportedDrugs()
	assert.Len(t, drugs, 11)
	assert.Contains(t, drugs, "CODEINE")
	assert.Contains(t, drugs, "FLUOROURACIL")
}
