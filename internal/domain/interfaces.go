package domain

import (
	"context"
	"io"
)

// VariantExtractor parses VCF content and selects the curated marker variants
type VariantExtractor interface {
	Extract(r io.Reader) ([]Variant, error)
	ExtractForGene(r io.Reader, gene string) ([]Variant, error)
}

// DiplotypeResolver derives a star-allele diplotype for one gene from its
// detected variants
type DiplotypeResolver interface {
	Resolve(gene string, variants []Variant) string
}

// PhenotypeClassifier maps a gene and diplotype to a metabolizer phenotype
type PhenotypeClassifier interface {
	Classify(gene, diplotype string) string
}

// RuleEngine applies the deterministic per-drug clinical decision tables
type RuleEngine interface {
	Evaluate(drug string, variants []Variant) (*RiskAssessment, error)
	SupportedDrugs() []string
}

// ConfidenceScorer computes the blended confidence score and its sub-scores
type ConfidenceScorer interface {
	Score(variants []Variant, level CPICLevel, label RiskLabel, explanation *Explanation) (float64, ConfidenceBreakdown)
}

// Advisor is the advisory-model collaborator. Implementations must be safe
// to fail; callers always carry a deterministic fallback.
type Advisor interface {
	AssessRisk(ctx context.Context, drug string, variants []Variant, assessment *RiskAssessment) (*AdvisoryRisk, error)
	Explain(ctx context.Context, drug string, variants []Variant, assessment *RiskAssessment, guideline *Guideline) (*Explanation, error)
}

// GuidelineStore provides read access to the seeded CPIC guideline corpus
type GuidelineStore interface {
	GetGuideline(ctx context.Context, drug, phenotypeCode string) (*Guideline, error)
	GetDrug(ctx context.Context, drug string) (*DrugInfo, error)
	ListDrugs(ctx context.Context) ([]DrugInfo, error)
	ListPhenotypes(ctx context.Context, drug string) ([]PhenotypeOption, error)
	Close() error
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetDatabaseConfig() *DatabaseConfig
	GetAdvisoryConfig() *AdvisoryConfig
	GetConfidenceConfig() *ConfidenceConfig
	Reload() error
	Validate() error
	IsProduction() bool
	IsDevelopment() bool
}
