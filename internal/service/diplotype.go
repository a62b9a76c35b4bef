package service

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/pharmaguard-server/internal/domain"
)

const referenceAllele = "*1"

// DiplotypeResolver derives a two-allele star diplotype for a gene from the
// zygosity of its detected marker variants.
type DiplotypeResolver struct {
	logger *logrus.Logger
}

// NewDiplotypeResolver creates a new DiplotypeResolver
func NewDiplotypeResolver(logger *logrus.Logger) *DiplotypeResolver {
	return &DiplotypeResolver{logger: logger}
}

// Resolve returns the diplotype for one gene. Each marker contributes
// alleles by zygosity: hom-alt two copies of its variant allele, het one
// reference plus one variant allele, hom-ref two reference alleles, and
// missing calls nothing. Contributions concatenate in file order but only
// the first two entries are used. This is not full haplotype resolution;
// genes that need per-marker zygosity counting bypass this path in their
// decision tables. Fewer than two collected alleles resolves to *1/*1.
func (d *DiplotypeResolver) Resolve(gene string, variants []domain.Variant) string {
	var alleles []string
	for _, v := range variants {
		if v.Gene != gene {
			continue
		}
		switch v.Zygosity {
		case domain.ZygosityHomAlt:
			alleles = append(alleles, v.Allele, v.Allele)
		case domain.ZygosityHet:
			alleles = append(alleles, referenceAllele, v.Allele)
		case domain.ZygosityHomRef:
			alleles = append(alleles, referenceAllele, referenceAllele)
		}
	}

	if len(alleles) < 2 {
		return referenceAllele + "/" + referenceAllele
	}
	if len(alleles) > 2 {
		d.logger.WithFields(logrus.Fields{
			"gene":    gene,
			"alleles": alleles,
		}).Debug("more than two allele contributions, truncating")
		alleles = alleles[:2]
	}

	// Reference allele sorts first, remaining alleles lexicographically.
	sort.SliceStable(alleles, func(i, j int) bool {
		if (alleles[i] == referenceAllele) != (alleles[j] == referenceAllele) {
			return alleles[i] == referenceAllele
		}
		return alleles[i] < alleles[j]
	})

	return alleles[0] + "/" + alleles[1]
}
