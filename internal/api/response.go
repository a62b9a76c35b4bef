package api

import (
	"github.com/pharmaguard-server/internal/domain"
	"github.com/pharmaguard-server/internal/service"
)

// drugResponse is the per-drug analysis response schema.
type drugResponse struct {
	PatientID              string             `json:"patient_id"`
	Drug                   string             `json:"drug"`
	Timestamp              string             `json:"timestamp"`
	RiskAssessment         riskAssessmentView `json:"risk_assessment"`
	PharmacogenomicProfile profileView        `json:"pharmacogenomic_profile"`
	ClinicalRecommendation recommendationView `json:"clinical_recommendation"`
	Explanation            explanationView    `json:"llm_generated_explanation"`
	QualityMetrics         qualityView        `json:"quality_metrics"`
}

// batchResponse wraps the per-drug results with panel-level polypharmacy
// warnings.
type batchResponse struct {
	PatientID            string                     `json:"patient_id"`
	Timestamp            string                     `json:"timestamp"`
	Results              []drugResponse             `json:"results"`
	PolypharmacyWarnings []domain.BottleneckWarning `json:"polypharmacy_warnings"`
}

type riskAssessmentView struct {
	RiskLabel       domain.RiskLabel `json:"risk_label"`
	ConfidenceScore float64          `json:"confidence_score"`
	Severity        domain.Severity  `json:"severity"`
}

type profileView struct {
	PrimaryGene      string            `json:"primary_gene"`
	Diplotype        string            `json:"diplotype"`
	Phenotype        string            `json:"phenotype"`
	DetectedVariants []detectedVariant `json:"detected_variants"`
}

type detectedVariant struct {
	RSID string `json:"rsid"`
}

type recommendationView struct {
	RecommendationText string `json:"recommendation_text"`
}

type explanationView struct {
	Summary            string                     `json:"summary"`
	Mechanism          string                     `json:"mechanism"`
	VariantCitations   []domain.VariantCitation   `json:"variant_citations"`
	GuidelineCitations []domain.GuidelineCitation `json:"guideline_citations"`
	ConfidencePercent  *float64                   `json:"llm_confidence_percent,omitempty"`
}

type qualityView struct {
	VCFParsingSuccess     bool               `json:"vcf_parsing_success"`
	TotalVariantsAnalyzed int                `json:"total_variants_analyzed"`
	FileName              string             `json:"file_name"`
	FileSizeBytes         int64              `json:"file_size_bytes"`
	ConfidenceModel       map[string]float64 `json:"confidence_model"`
	DataRetention         string             `json:"data_retention"`
}

// qualityMetrics carries the per-request input provenance into the
// response builder.
type qualityMetrics struct {
	parsingOK bool
	total     int
	fileName  string
	fileSize  int64
}

// buildDrugResponse assembles the response schema for one analyzed drug.
// The variant list in the profile is filtered to the assessed gene.
func (s *Server) buildDrugResponse(patientID, timestamp string, analysis *service.DrugAnalysis, variants []domain.Variant, quality qualityMetrics) drugResponse {
	assessment := analysis.Assessment

	detected := []detectedVariant{}
	for _, v := range variants {
		if assessment.Gene != "" && v.Gene == assessment.Gene && v.RSID != "" {
			detected = append(detected, detectedVariant{RSID: v.RSID})
		}
	}

	explanation := explanationView{
		VariantCitations:   []domain.VariantCitation{},
		GuidelineCitations: []domain.GuidelineCitation{},
	}
	if analysis.Explanation != nil {
		explanation.Summary = analysis.Explanation.Summary
		explanation.Mechanism = analysis.Explanation.Mechanism
		explanation.ConfidencePercent = analysis.Explanation.ConfidencePercent
		if analysis.Explanation.VariantCitations != nil {
			explanation.VariantCitations = analysis.Explanation.VariantCitations
		}
		if analysis.Explanation.GuidelineCitations != nil {
			explanation.GuidelineCitations = analysis.Explanation.GuidelineCitations
		}
	}

	return drugResponse{
		PatientID: patientID,
		Drug:      assessment.Drug,
		Timestamp: timestamp,
		RiskAssessment: riskAssessmentView{
			RiskLabel:       assessment.Label,
			ConfidenceScore: assessment.ConfidenceScore,
			Severity:        assessment.Severity,
		},
		PharmacogenomicProfile: profileView{
			PrimaryGene:      assessment.Gene,
			Diplotype:        assessment.Diplotype,
			Phenotype:        domain.PhenotypeCode(assessment.Phenotype),
			DetectedVariants: detected,
		},
		ClinicalRecommendation: recommendationView{
			RecommendationText: assessment.Recommendation,
		},
		Explanation: explanation,
		QualityMetrics: qualityView{
			VCFParsingSuccess:     quality.parsingOK,
			TotalVariantsAnalyzed: quality.total,
			FileName:              quality.fileName,
			FileSizeBytes:         quality.fileSize,
			ConfidenceModel:       s.analyzer.ConfidenceParameters(),
			DataRetention:         "Zero-retention - File purged after processing",
		},
	}
}
