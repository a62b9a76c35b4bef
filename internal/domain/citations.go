package domain

import "fmt"

const maxVariantCitations = 10

// AttachCitations populates the structured citations on an explanation: one
// dbSNP citation per detected variant (capped) and one guideline citation.
// Without a guideline entry the citation points at the CPIC index instead.
func (e *Explanation) AttachCitations(guideline *Guideline, variants []Variant) {
	e.VariantCitations = []VariantCitation{}
	e.GuidelineCitations = []GuidelineCitation{}

	for i, v := range variants {
		if i >= maxVariantCitations {
			break
		}
		e.VariantCitations = append(e.VariantCitations, VariantCitation{
			RSID:     stringOr(v.RSID, "Unknown"),
			Gene:     stringOr(v.Gene, "Unknown"),
			Allele:   stringOr(v.Allele, "Unknown"),
			Function: stringOr(v.Function, "Unknown"),
			Genotype: stringOr(v.Genotype, "Unknown"),
			DBSNPURL: fmt.Sprintf("https://www.ncbi.nlm.nih.gov/snp/%s", v.RSID),
		})
	}

	if guideline != nil {
		e.GuidelineCitations = append(e.GuidelineCitations, GuidelineCitation{
			Type:           "cpic_guideline",
			Source:         stringOr(guideline.Source, "CPIC Guideline"),
			URL:            guideline.GuidelineURL,
			Phenotype:      guideline.PhenotypeName,
			Gene:           guideline.Gene,
			Summary:        guideline.Summary,
			Recommendation: guideline.Recommendation,
		})
	} else {
		e.GuidelineCitations = append(e.GuidelineCitations, GuidelineCitation{
			Type:        "cpic_reference",
			Source:      "CPIC Guidelines",
			URL:         "https://cpicpgx.org/guidelines/",
			Description: "Clinical Pharmacogenetics Implementation Consortium Guidelines",
		})
	}
}

func stringOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
