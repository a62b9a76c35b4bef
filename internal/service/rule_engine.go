package service

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pharmaguard-server/internal/domain"
)

// evalContext carries everything a drug decision table may consult.
type evalContext struct {
	Variants     []domain.Variant
	GeneVariants []domain.Variant
	Gene         string
	Diplotype    string
	Phenotype    string
	Code         string
}

// outcome is one decision-table result. An empty Phenotype means the
// classifier's phenotype stands.
type outcome struct {
	Label          domain.RiskLabel
	Severity       domain.Severity
	Phenotype      string
	Recommendation string
	Confidence     float64
}

// rule is one (predicate, outcome) row of a decision table.
type rule struct {
	when func(*evalContext) bool
	out  outcome
}

// drugPolicy is a complete per-drug decision table: gene, guideline level,
// ordered rules evaluated first-match-wins, the default outcome when no
// rule fires, and an optional post-evaluation hook.
type drugPolicy struct {
	gene     string
	cpic     domain.CPICLevel
	deflt    outcome
	rules    []rule
	finalize func(*evalContext, *domain.RiskAssessment)
}

// RuleEngine applies the deterministic per-drug clinical decision tables.
// It is stateless across calls; every assessment is derived from the
// variant list alone.
type RuleEngine struct {
	resolver   *DiplotypeResolver
	classifier *PhenotypeClassifier
	logger     *logrus.Logger
	policies   map[string]drugPolicy
}

// NewRuleEngine creates a new RuleEngine
func NewRuleEngine(resolver *DiplotypeResolver, classifier *PhenotypeClassifier, logger *logrus.Logger) *RuleEngine {
	return &RuleEngine{
		resolver:   resolver,
		classifier: classifier,
		logger:     logger,
		policies:   buildPolicies(),
	}
}

// SupportedDrugs returns the drug names the engine has decision tables for.
func (e *RuleEngine) SupportedDrugs() []string {
	drugs := make([]string, 0, len(e.policies))
	for d := range e.policies {
		drugs = append(drugs, d)
	}
	return drugs
}

// Evaluate runs the decision table for one drug against the full variant
// list. Drugs without a table yield the generic unknown assessment, not an
// error.
func (e *RuleEngine) Evaluate(drug string, variants []domain.Variant) (*domain.RiskAssessment, error) {
	name := domain.NormalizeDrug(drug)

	policy, ok := e.policies[name]
	if !ok {
		return unknownAssessment(name), nil
	}

	ctx := &evalContext{
		Variants:     variants,
		GeneVariants: FilterByGene(variants, policy.gene),
		Gene:         policy.gene,
	}
	ctx.Diplotype = e.resolver.Resolve(policy.gene, variants)
	ctx.Phenotype = e.classifier.Classify(policy.gene, ctx.Diplotype)
	ctx.Code = domain.PhenotypeCode(ctx.Phenotype)

	out := policy.deflt
	for _, r := range policy.rules {
		if r.when(ctx) {
			out = r.out
			break
		}
	}

	assessment := &domain.RiskAssessment{
		Drug:            name,
		Gene:            policy.gene,
		Diplotype:       ctx.Diplotype,
		Phenotype:       ctx.Phenotype,
		Label:           out.Label,
		Severity:        out.Severity,
		Recommendation:  out.Recommendation,
		CPICLevel:       policy.cpic,
		ConfidenceScore: out.Confidence,
	}
	if out.Phenotype != "" {
		assessment.Phenotype = out.Phenotype
	}

	if policy.finalize != nil {
		policy.finalize(ctx, assessment)
	}

	e.logger.WithFields(logrus.Fields{
		"drug":      name,
		"gene":      policy.gene,
		"diplotype": assessment.Diplotype,
		"phenotype": assessment.Phenotype,
		"label":     assessment.Label,
	}).Debug("rule engine evaluation completed")

	return assessment, nil
}

// unknownAssessment is the response for drugs outside the supported set.
func unknownAssessment(drug string) *domain.RiskAssessment {
	return &domain.RiskAssessment{
		Drug:            drug,
		Gene:            "Unknown",
		Diplotype:       "*1/*1",
		Phenotype:       PhenotypeUnknown,
		Label:           domain.LabelUnknown,
		Severity:        domain.SeverityUnknown,
		Recommendation:  "Insufficient genetic data. Standard dosing recommended with clinical monitoring.",
		CPICLevel:       domain.CPICLevelNA,
		ConfidenceScore: 0.5,
	}
}

// Predicate helpers

func codeIs(codes ...string) func(*evalContext) bool {
	return func(c *evalContext) bool {
		for _, code := range codes {
			if c.Code == code {
				return true
			}
		}
		return false
	}
}

func diplotypeContains(pairs ...string) func(*evalContext) bool {
	return func(c *evalContext) bool {
		for _, p := range pairs {
			if strings.Contains(c.Diplotype, p) {
				return true
			}
		}
		return false
	}
}

func anyOf(preds ...func(*evalContext) bool) func(*evalContext) bool {
	return func(c *evalContext) bool {
		for _, p := range preds {
			if p(c) {
				return true
			}
		}
		return false
	}
}

// alleleZygosity scans the gene's raw variant rows for the first marker
// whose allele is in the curated high-risk list (or, when matchLoss is set,
// whose function class is loss of function) and reports its zygosity.
// First match wins; later higher-severity markers do not override it.
func alleleZygosity(c *evalContext, alleles []string, matchLoss bool) (domain.Zygosity, bool) {
	for _, v := range c.GeneVariants {
		hit := false
		for _, a := range alleles {
			if v.Allele == a {
				hit = true
				break
			}
		}
		if !hit && matchLoss && v.Function == "Loss of function" {
			hit = true
		}
		if !hit {
			continue
		}
		if v.Zygosity == domain.ZygosityHomAlt || v.Zygosity == domain.ZygosityHet {
			return v.Zygosity, true
		}
	}
	return domain.ZygosityMissing, false
}

// variantAlleleCount totals non-reference allele copies across the gene's
// variant rows: two per homozygous-alt marker, one per heterozygous marker.
func variantAlleleCount(c *evalContext) int {
	count := 0
	for _, v := range c.GeneVariants {
		switch v.Zygosity {
		case domain.ZygosityHomAlt:
			count += 2
		case domain.ZygosityHet:
			count++
		}
	}
	return count
}

func buildPolicies() map[string]drugPolicy {
	return map[string]drugPolicy{
		"CODEINE": {
			gene: "CYP2D6",
			cpic: domain.CPICLevelA,
			deflt: outcome{
				Label: domain.LabelSafe, Severity: domain.SeverityNone,
				Recommendation: "Use codeine with standard dosing.",
				Confidence:     0.85,
			},
			rules: []rule{
				{when: codeIs("PM"), out: outcome{
					Label: domain.LabelToxic, Severity: domain.SeverityHigh,
					Recommendation: "AVOID codeine. Poor metabolizers risk morphine toxicity. Use non-opioid analgesics or alternative opioids not dependent on CYP2D6 (e.g., morphine, hydromorphone).",
					Confidence:     0.95,
				}},
				{when: codeIs("RM", "URM"), out: outcome{
					Label: domain.LabelToxic, Severity: domain.SeverityHigh,
					Recommendation: "AVOID codeine. Ultra-rapid metabolizers have increased risk of life-threatening respiratory depression from rapid morphine formation. Use alternative analgesics.",
					Confidence:     0.95,
				}},
			},
		},

		"FLUOXETINE": {
			gene: "CYP2D6",
			cpic: domain.CPICLevelA,
			deflt: outcome{
				Label: domain.LabelSafe, Severity: domain.SeverityNone,
				Recommendation: "Use fluoxetine at standard dose (20mg/day). Monitor for side effects.",
				Confidence:     0.85,
			},
			rules: []rule{
				{when: codeIs("PM"), out: outcome{
					Label: domain.LabelAdjust, Severity: domain.SeverityHigh,
					Recommendation: "REDUCE fluoxetine dose. Poor metabolizers have 2-4x higher drug concentrations. Start at 10mg/day and titrate slowly. Consider alternative antidepressant not metabolized by CYP2D6 (e.g., citalopram, sertraline).",
					Confidence:     0.95,
				}},
				{when: codeIs("IM"), out: outcome{
					Label: domain.LabelAdjust, Severity: domain.SeverityModerate,
					Recommendation: "CONSIDER LOWER fluoxetine dose. Intermediate metabolizers may have higher drug levels. Start at 10-15mg/day and monitor for side effects.",
					Confidence:     0.90,
				}},
			},
		},

		"PAROXETINE": {
			gene: "CYP2D6",
			cpic: domain.CPICLevelA,
			deflt: outcome{
				Label: domain.LabelSafe, Severity: domain.SeverityNone,
				Recommendation: "Use paroxetine at standard dose (20mg/day).",
				Confidence:     0.85,
			},
			rules: []rule{
				{when: codeIs("PM"), out: outcome{
					Label: domain.LabelAdjust, Severity: domain.SeverityHigh,
					Recommendation: "REDUCE paroxetine dose. Poor metabolizers have significantly higher drug concentrations and increased risk of side effects. Start at 10mg/day or consider alternative antidepressant not metabolized by CYP2D6.",
					Confidence:     0.95,
				}},
				{when: codeIs("IM"), out: outcome{
					Label: domain.LabelAdjust, Severity: domain.SeverityModerate,
					Recommendation: "CONSIDER LOWER paroxetine dose. Intermediate metabolizers may have elevated drug levels. Start at 10-15mg/day and monitor for side effects.",
					Confidence:     0.90,
				}},
			},
		},

		"RISPERIDONE": {
			gene: "CYP2D6",
			cpic: domain.CPICLevelA,
			deflt: outcome{
				Label: domain.LabelSafe, Severity: domain.SeverityNone,
				Recommendation: "Use risperidone at standard dose (2-6mg/day).",
				Confidence:     0.85,
			},
			rules: []rule{
				{when: codeIs("PM"), out: outcome{
					Label: domain.LabelAdjust, Severity: domain.SeverityHigh,
					Recommendation: "REDUCE risperidone dose. Poor metabolizers have higher active fraction concentrations. Start at 0.5-1mg/day and titrate slowly. Monitor for extrapyramidal side effects.",
					Confidence:     0.95,
				}},
			},
		},

		"WARFARIN": {
			gene: "CYP2C9",
			cpic: domain.CPICLevelA,
			deflt: outcome{
				Label: domain.LabelAdjust, Severity: domain.SeverityModerate,
				Recommendation: "Start with standard warfarin dosing (5mg/day). Monitor INR closely.",
				Confidence:     0.80,
			},
			rules: []rule{
				{when: anyOf(codeIs("PM"), diplotypeContains("*2/*3", "*3/*3")), out: outcome{
					Label: domain.LabelAdjust, Severity: domain.SeverityHigh,
					Recommendation: "SIGNIFICANTLY REDUCE warfarin dose. CYP2C9 poor metabolizers require 30-50% lower starting doses. Use pharmacogenetic dosing algorithms. Monitor INR frequently.",
					Confidence:     0.95,
				}},
				{when: anyOf(codeIs("IM"), diplotypeContains("*1/*2", "*1/*3", "*2/*2")), out: outcome{
					Label: domain.LabelAdjust, Severity: domain.SeverityModerate,
					Recommendation: "REDUCE warfarin dose. CYP2C9 intermediate metabolizers require 20-30% lower starting doses. Monitor INR closely.",
					Confidence:     0.90,
				}},
			},
			// The VKORC1 companion marker appends dose-reduction text on
			// every path, independent of the CYP2C9 outcome.
			finalize: func(c *evalContext, a *domain.RiskAssessment) {
				for _, v := range c.Variants {
					if v.Gene == "VKORC1" || v.RSID == "rs9923231" {
						a.Recommendation += " VKORC1 variant detected - consider 40-50% dose reduction."
						return
					}
				}
			},
		},

		"IBUPROFEN": {
			gene: "CYP2C9",
			cpic: domain.CPICLevelB,
			deflt: outcome{
				Label: domain.LabelSafe, Severity: domain.SeverityNone,
				Recommendation: "Use ibuprofen at standard OTC doses (200-400mg every 6 hours).",
				Confidence:     0.80,
			},
			rules: []rule{
				{when: codeIs("PM"), out: outcome{
					Label: domain.LabelAdjust, Severity: domain.SeverityModerate,
					Recommendation: "CONSIDER LOWER ibuprofen dose or alternative. Poor metabolizers may have increased risk of GI bleeding with chronic use. Use lowest effective dose for shortest duration.",
					Confidence:     0.85,
				}},
			},
		},

		"CLOPIDOGREL": {
			gene: "CYP2C19",
			cpic: domain.CPICLevelA,
			deflt: outcome{
				Label: domain.LabelSafe, Severity: domain.SeverityNone,
				Recommendation: "Use clopidogrel at standard dose (75mg/day).",
				Confidence:     0.85,
			},
			rules: []rule{
				{when: codeIs("PM"), out: outcome{
					Label: domain.LabelIneffective, Severity: domain.SeverityHigh,
					Recommendation: "AVOID clopidogrel. Poor metabolizers have significantly reduced active metabolite formation. Use alternative antiplatelet therapy: prasugrel or ticagrelor at standard doses.",
					Confidence:     0.95,
				}},
				{when: codeIs("IM"), out: outcome{
					Label: domain.LabelIneffective, Severity: domain.SeverityModerate,
					Recommendation: "CONSIDER ALTERNATIVE to clopidogrel. Intermediate metabolizers have reduced platelet inhibition. Prasugrel or ticagrelor may be more effective.",
					Confidence:     0.85,
				}},
				{when: codeIs("RM", "URM"), out: outcome{
					Label: domain.LabelAdjust, Severity: domain.SeverityLow,
					Recommendation: "Rapid/ultrarapid metabolizers may have slightly increased active metabolite formation and bleeding risk. Standard dosing is likely appropriate with monitoring.",
					Confidence:     0.80,
				}},
			},
		},

		"OMEPRAZOLE": {
			gene: "CYP2C19",
			cpic: domain.CPICLevelA,
			deflt: outcome{
				Label: domain.LabelSafe, Severity: domain.SeverityNone,
				Recommendation: "Use omeprazole at standard dose (20mg/day).",
				Confidence:     0.85,
			},
			rules: []rule{
				{when: codeIs("RM", "URM"), out: outcome{
					Label: domain.LabelAdjust, Severity: domain.SeverityModerate,
					Recommendation: "CONSIDER INCREASED omeprazole dose. Rapid/ultrarapid metabolizers may have reduced drug exposure and therapeutic failure. Consider 40mg/day or alternative PPI less affected by CYP2C19 (e.g., rabeprazole).",
					Confidence:     0.90,
				}},
				{when: codeIs("PM"), out: outcome{
					Label: domain.LabelAdjust, Severity: domain.SeverityLow,
					Recommendation: "CONSIDER LOWER omeprazole dose. Poor metabolizers have 5-10x higher drug exposure. Standard doses may be effective at lower amounts. Monitor for efficacy.",
					Confidence:     0.90,
				}},
			},
		},

		"SIMVASTATIN": {
			gene: "SLCO1B1",
			cpic: domain.CPICLevelA,
			deflt: outcome{
				Label: domain.LabelSafe, Severity: domain.SeverityNone,
				Phenotype:      FunctionNormal,
				Recommendation: "Use simvastatin at standard dose (up to 40mg/day).",
				Confidence:     0.85,
			},
			rules: []rule{
				{when: func(c *evalContext) bool {
					z, ok := alleleZygosity(c, []string{"*5"}, false)
					return ok && z == domain.ZygosityHomAlt
				}, out: outcome{
					Label: domain.LabelToxic, Severity: domain.SeverityHigh,
					Phenotype:      FunctionPoor,
					Recommendation: "SIGNIFICANTLY REDUCE simvastatin dose or consider alternative statin. Homozygous SLCO1B1 variants have 200% higher statin exposure. Maximum recommended dose: 20mg/day with close monitoring for myopathy.",
					Confidence:     0.95,
				}},
				{when: func(c *evalContext) bool {
					z, ok := alleleZygosity(c, []string{"*5"}, false)
					return ok && z == domain.ZygosityHet
				}, out: outcome{
					Label: domain.LabelAdjust, Severity: domain.SeverityModerate,
					Phenotype:      FunctionIntermediate,
					Recommendation: "REDUCE simvastatin dose. Heterozygous SLCO1B1 variants have increased statin exposure. Maximum recommended dose: 40mg/day. Consider alternative statin (pravastatin, rosuvastatin) if higher doses needed.",
					Confidence:     0.90,
				}},
			},
		},

		"AZATHIOPRINE": {
			gene: "TPMT",
			cpic: domain.CPICLevelA,
			deflt: outcome{
				Label: domain.LabelSafe, Severity: domain.SeverityNone,
				Phenotype:      PhenotypeNormal,
				Recommendation: "Use azathioprine at standard dose (2-3 mg/kg/day).",
				Confidence:     0.85,
			},
			rules: []rule{
				{when: func(c *evalContext) bool { return variantAlleleCount(c) == 2 }, out: outcome{
					Label: domain.LabelToxic, Severity: domain.SeverityCritical,
					Phenotype:      PhenotypePoor,
					Recommendation: "AVOID azathioprine. TPMT poor metabolizers risk life-threatening myelosuppression. Use alternative immunosuppressants (e.g., cyclosporine, tacrolimus) or reduce dose by 90% with extreme caution and frequent monitoring.",
					Confidence:     0.98,
				}},
				{when: func(c *evalContext) bool { return variantAlleleCount(c) == 1 }, out: outcome{
					Label: domain.LabelAdjust, Severity: domain.SeverityHigh,
					Phenotype:      PhenotypeIntermediate,
					Recommendation: "REDUCE azathioprine dose. TPMT intermediate metabolizers require 30-70% dose reduction. Start at 30-50% of standard dose and titrate based on tolerance and blood counts.",
					Confidence:     0.90,
				}},
			},
		},

		"FLUOROURACIL": {
			gene: "DPYD",
			cpic: domain.CPICLevelA,
			deflt: outcome{
				Label: domain.LabelSafe, Severity: domain.SeverityNone,
				Phenotype:      PhenotypeNormal,
				Recommendation: "Use fluorouracil at standard dose.",
				Confidence:     0.85,
			},
			rules: []rule{
				{when: func(c *evalContext) bool {
					z, ok := alleleZygosity(c, []string{"*2A", "*13", "HapB3"}, true)
					return ok && z == domain.ZygosityHomAlt
				}, out: outcome{
					Label: domain.LabelToxic, Severity: domain.SeverityCritical,
					Phenotype:      PhenotypePoor,
					Recommendation: "AVOID fluorouracil. DPYD poor metabolizers risk severe, life-threatening toxicity including myelosuppression, neurotoxicity, and gastrointestinal toxicity. Use alternative chemotherapeutic agents.",
					Confidence:     0.98,
				}},
				{when: func(c *evalContext) bool {
					z, ok := alleleZygosity(c, []string{"*2A", "*13", "HapB3"}, true)
					return ok && z == domain.ZygosityHet
				}, out: outcome{
					Label: domain.LabelToxic, Severity: domain.SeverityHigh,
					Phenotype:      PhenotypeIntermediate,
					Recommendation: "REDUCE fluorouracil dose by 50%. DPYD intermediate metabolizers have increased risk of severe toxicity. Consider alternative chemotherapy or reduce dose with intensive monitoring.",
					Confidence:     0.95,
				}},
			},
		},
	}
}
