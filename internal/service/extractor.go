package service

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/pharmaguard-server/internal/domain"
	"github.com/pharmaguard-server/pkg/vcf"
)

// VariantExtractor parses VCF content and keeps only the curated
// pharmacogenomic marker variants.
type VariantExtractor struct {
	logger *logrus.Logger
}

// NewVariantExtractor creates a new VariantExtractor
func NewVariantExtractor(logger *logrus.Logger) *VariantExtractor {
	return &VariantExtractor{logger: logger}
}

// Extract parses the VCF stream and returns every curated marker variant
// found, in file order. Rows whose rsID is not in the marker table are
// dropped silently.
func (e *VariantExtractor) Extract(r io.Reader) ([]domain.Variant, error) {
	records, err := vcf.Parse(r)
	if err != nil {
		return nil, err
	}

	var variants []domain.Variant
	for _, rec := range records {
		marker, ok := domain.Markers[rec.ID]
		if !ok {
			continue
		}

		gt := rec.Genotype()
		v := domain.Variant{
			RSID:       rec.ID,
			Gene:       marker.Gene,
			Allele:     marker.Allele,
			Function:   marker.Function,
			CPICLevel:  marker.CPICLevel,
			Genotype:   gt,
			Zygosity:   domain.ParseZygosity(gt),
			Chromosome: rec.Chrom,
			Position:   rec.Pos,
			Ref:        rec.Ref,
			Alt:        rec.Alt,
			Quality:    rec.Qual,
			Filter:     rec.Filter,
			Info:       rec.Info,
		}

		v.QualityScore = rec.QualityScore()

		// Per-sample depth takes priority over the INFO aggregate.
		if d := rec.SampleDepth(); d != nil {
			v.ReadDepth = d
		} else {
			v.ReadDepth = rec.InfoDepth()
		}

		// An explicit GENE annotation overrides the curated gene. This is
		// what lets companion-gene markers (VKORC1 for warfarin) surface.
		if g, ok := rec.GeneAnnotation(); ok {
			v.HasGeneAnnotation = true
			v.Gene = g
		}
		if _, ok := rec.StarAnnotation(); ok {
			v.HasStarAnnotation = true
		}
		v.HasRSIDAnnotation = rec.ID != "" && rec.ID != "."

		variants = append(variants, v)
	}

	e.logger.WithFields(logrus.Fields{
		"total_records":   len(records),
		"marker_variants": len(variants),
	}).Debug("VCF variant extraction completed")

	return variants, nil
}

// ExtractForGene parses the stream and returns only markers of one gene.
func (e *VariantExtractor) ExtractForGene(r io.Reader, gene string) ([]domain.Variant, error) {
	all, err := e.Extract(r)
	if err != nil {
		return nil, err
	}
	var out []domain.Variant
	for _, v := range all {
		if v.Gene == gene {
			out = append(out, v)
		}
	}
	return out, nil
}

// FilterByGene selects the variants belonging to one gene from an already
// extracted set.
func FilterByGene(variants []domain.Variant, gene string) []domain.Variant {
	var out []domain.Variant
	for _, v := range variants {
		if v.Gene == gene {
			out = append(out, v)
		}
	}
	return out
}
