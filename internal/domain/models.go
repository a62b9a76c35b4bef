package domain

import (
	"strings"
)

// Core Enums and Types

// RiskLabel represents the clinical risk categories for a drug-gene interaction
type RiskLabel string

const (
	LabelSafe        RiskLabel = "Safe"
	LabelAdjust      RiskLabel = "Adjust Dosage"
	LabelToxic       RiskLabel = "Toxic"
	LabelIneffective RiskLabel = "Ineffective"
	LabelUnknown     RiskLabel = "Unknown"
)

// NormalizeRiskLabel maps an external label string onto the closed label set.
// Unrecognized values collapse to LabelUnknown rather than propagating raw strings.
func NormalizeRiskLabel(raw string) RiskLabel {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "safe":
		return LabelSafe
	case "adjust dosage", "adjust":
		return LabelAdjust
	case "toxic":
		return LabelToxic
	case "ineffective":
		return LabelIneffective
	default:
		return LabelUnknown
	}
}

// Severity represents how severe a predicted adverse outcome is
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
	SeverityUnknown  Severity = "unknown"
)

// NormalizeSeverity maps an external severity string onto the closed severity set.
func NormalizeSeverity(raw string) Severity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "none":
		return SeverityNone
	case "low":
		return SeverityLow
	case "moderate":
		return SeverityModerate
	case "high":
		return SeverityHigh
	case "critical":
		return SeverityCritical
	default:
		return SeverityUnknown
	}
}

// CPICLevel represents the evidence-strength grade of a CPIC guideline
type CPICLevel string

const (
	CPICLevelA  CPICLevel = "A"
	CPICLevelB  CPICLevel = "B"
	CPICLevelC  CPICLevel = "C"
	CPICLevelD  CPICLevel = "D"
	CPICLevelNA CPICLevel = "N/A"
)

// NormalizeCPICLevel maps an external level string onto the closed level set.
func NormalizeCPICLevel(raw string) CPICLevel {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "A":
		return CPICLevelA
	case "B":
		return CPICLevelB
	case "C":
		return CPICLevelC
	case "D":
		return CPICLevelD
	default:
		return CPICLevelNA
	}
}

// Zygosity represents a genotype call resolved to one of the closed call states
type Zygosity string

const (
	ZygosityHomRef  Zygosity = "hom_ref"
	ZygosityHet     Zygosity = "het"
	ZygosityHomAlt  Zygosity = "hom_alt"
	ZygosityMissing Zygosity = "missing"
)

// ParseZygosity resolves a raw VCF GT field into a Zygosity. Phased and
// unphased separators are treated identically; anything unrecognized is a
// missing call.
func ParseZygosity(gt string) Zygosity {
	switch gt {
	case "0/0", "0|0":
		return ZygosityHomRef
	case "0/1", "1/0", "0|1", "1|0":
		return ZygosityHet
	case "1/1", "1|1":
		return ZygosityHomAlt
	default:
		return ZygosityMissing
	}
}

// Core Data Models

// Variant represents a curated pharmacogenomic marker variant extracted from
// a VCF row. QualityScore and ReadDepth are nil when the row carried no
// usable value; absence is an explicit state, never an error.
type Variant struct {
	RSID      string    `json:"rsid"`
	Gene      string    `json:"gene"`
	Allele    string    `json:"allele"`
	Function  string    `json:"function"`
	CPICLevel CPICLevel `json:"cpic_level"`

	Genotype string   `json:"genotype"`
	Zygosity Zygosity `json:"zygosity"`

	Chromosome string `json:"chromosome"`
	Position   string `json:"position"`
	Ref        string `json:"ref"`
	Alt        string `json:"alt"`
	Quality    string `json:"quality"`
	Filter     string `json:"filter"`
	Info       string `json:"info"`

	QualityScore *float64 `json:"quality_score,omitempty"`
	ReadDepth    *int     `json:"read_depth,omitempty"`

	HasGeneAnnotation bool `json:"has_gene_annotation"`
	HasStarAnnotation bool `json:"has_star_annotation"`
	HasRSIDAnnotation bool `json:"has_rsid_annotation"`
}

// RiskAssessment is the deterministic engine's verdict for one drug.
// Every field is populated on every path; it is derived per request and
// never persisted.
type RiskAssessment struct {
	Drug           string    `json:"drug"`
	Gene           string    `json:"gene"`
	Diplotype      string    `json:"diplotype"`
	Phenotype      string    `json:"phenotype"`
	Label          RiskLabel `json:"label"`
	Severity       Severity  `json:"severity"`
	Recommendation string    `json:"recommendation"`
	CPICLevel      CPICLevel `json:"cpic_level"`
	ConfidenceScore float64  `json:"confidence_score"`
}

// ConfidenceBreakdown retains the three blended sub-scores for observability
type ConfidenceBreakdown struct {
	QVCF  float64 `json:"q_vcf"`
	GCPIC float64 `json:"g_cpic"`
	PLLM  float64 `json:"p_llm"`
}

// Advisory Models

// AdvisoryRisk is the structured clinical decision returned by the advisory
// model. The rule engine's deterministic output is the fallback whenever the
// advisory collaborator is unavailable.
type AdvisoryRisk struct {
	Label             RiskLabel `json:"label"`
	Severity          Severity  `json:"severity"`
	Phenotype         string    `json:"phenotype"`
	Diplotype         string    `json:"diplotype"`
	Gene              string    `json:"gene"`
	Recommendation    string    `json:"recommendation"`
	CPICLevel         CPICLevel `json:"cpic_level"`
	ConfidencePercent float64   `json:"llm_confidence_percent"`
}

// VariantCitation links an explanation back to one detected marker variant
type VariantCitation struct {
	RSID     string `json:"rsid"`
	Gene     string `json:"gene"`
	Allele   string `json:"allele"`
	Function string `json:"function"`
	Genotype string `json:"genotype"`
	DBSNPURL string `json:"dbSNP_url"`
}

// GuidelineCitation links an explanation back to its CPIC guideline source
type GuidelineCitation struct {
	Type           string `json:"type"`
	Source         string `json:"source"`
	URL            string `json:"url"`
	Phenotype      string `json:"phenotype,omitempty"`
	Gene           string `json:"gene,omitempty"`
	Summary        string `json:"summary,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
	Description    string `json:"description,omitempty"`
}

// Explanation is the advisory model's narrative for an assessment.
// ConfidencePercent is nil when the model did not self-report one.
type Explanation struct {
	Summary            string              `json:"summary"`
	Mechanism          string              `json:"mechanism"`
	Recommendation     string              `json:"recommendation,omitempty"`
	VariantCitations   []VariantCitation   `json:"variant_citations"`
	GuidelineCitations []GuidelineCitation `json:"guideline_citations"`
	ConfidencePercent  *float64            `json:"llm_confidence_percent,omitempty"`
}

// BottleneckWarning flags a metabolic bottleneck: several prescribed drugs
// competing for the same enzyme in one patient.
type BottleneckWarning struct {
	Gene             string   `json:"gene"`
	CompetingDrugs   []string `json:"competing_drugs"`
	Count            int      `json:"count"`
	Severity         Severity `json:"severity"`
	RiskLevel        string   `json:"risk_level"`
	PatientPhenotype string   `json:"patient_phenotype"`
	Warning          string   `json:"warning"`
	ClinicalNote     string   `json:"clinical_note"`
}

// Guideline Models

// Guideline is one CPIC guideline entry keyed by (drug, phenotype code)
type Guideline struct {
	DrugName       string  `json:"drug_name"`
	Gene           string  `json:"gene"`
	PhenotypeCode  string  `json:"phenotype_code"`
	PhenotypeName  string  `json:"phenotype_name"`
	Summary        string  `json:"summary"`
	Mechanism      string  `json:"mechanism"`
	Recommendation string  `json:"recommendation"`
	Source         string  `json:"source"`
	GuidelineURL   string  `json:"guideline_url"`
	Confidence     float64 `json:"confidence_score"`
}

// DrugInfo is the basic drug record from the guideline store
type DrugInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Gene string `json:"gene"`
}

// PhenotypeOption is one phenotype a drug has guideline coverage for
type PhenotypeOption struct {
	PhenotypeCode string `json:"phenotype_code"`
	PhenotypeName string `json:"phenotype_name"`
}

// PhenotypeCode normalizes free-text phenotype names to the abbreviated
// codes used in API responses. Unmapped names report as "Unknown".
func PhenotypeCode(phenotype string) string {
	switch strings.ToLower(strings.TrimSpace(phenotype)) {
	case "poor metabolizer", "pm":
		return "PM"
	case "intermediate metabolizer", "im":
		return "IM"
	case "normal metabolizer", "nm":
		return "NM"
	case "rapid metabolizer", "rm":
		return "RM"
	case "ultrarapid metabolizer", "ultra-rapid metabolizer", "urm", "um":
		return "URM"
	default:
		return "Unknown"
	}
}
