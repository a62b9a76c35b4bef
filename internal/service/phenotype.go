package service

import (
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	PhenotypePoor         = "Poor Metabolizer"
	PhenotypeIntermediate = "Intermediate Metabolizer"
	PhenotypeNormal       = "Normal Metabolizer"
	PhenotypeRapid        = "Rapid Metabolizer"
	PhenotypeUltrarapid   = "Ultrarapid Metabolizer"
	PhenotypeUnknown      = "Unknown"

	FunctionPoor         = "Poor function"
	FunctionIntermediate = "Intermediate function"
	FunctionNormal       = "Normal function"
)

// phenotypeTables maps gene to diplotype to phenotype for the CYP genes.
// Lookups are exact; a diplotype outside the table reports Unknown rather
// than guessing at an activity score.
var phenotypeTables = map[string]map[string]string{
	"CYP2D6": {
		"*3/*3":   PhenotypePoor,
		"*4/*4":   PhenotypePoor,
		"*5/*5":   PhenotypePoor,
		"*6/*6":   PhenotypePoor,
		"*1/*3":   PhenotypeIntermediate,
		"*1/*4":   PhenotypeIntermediate,
		"*1/*5":   PhenotypeIntermediate,
		"*1/*6":   PhenotypeIntermediate,
		"*2/*4":   PhenotypeIntermediate,
		"*4/*41":  PhenotypeIntermediate,
		"*1/*1":   PhenotypeNormal,
		"*1/*2":   PhenotypeNormal,
		"*2/*2":   PhenotypeNormal,
		"*1/*1xN": PhenotypeUltrarapid,
		"*1/*2xN": PhenotypeUltrarapid,
		"*2/*2xN": PhenotypeUltrarapid,
	},
	"CYP2C19": {
		"*2/*2":   PhenotypePoor,
		"*2/*3":   PhenotypePoor,
		"*3/*3":   PhenotypePoor,
		"*1/*2":   PhenotypeIntermediate,
		"*1/*3":   PhenotypeIntermediate,
		"*1/*1":   PhenotypeNormal,
		"*1/*17":  PhenotypeRapid,
		"*17/*17": PhenotypeRapid,
	},
	"CYP2C9": {
		"*2/*3": PhenotypePoor,
		"*3/*3": PhenotypePoor,
		"*1/*2": PhenotypeIntermediate,
		"*1/*3": PhenotypeIntermediate,
		"*2/*2": PhenotypeIntermediate,
		"*1/*1": PhenotypeNormal,
	},
}

// PhenotypeClassifier maps a gene and star diplotype to its metabolizer
// phenotype. CYP genes use exact lookup tables; SLCO1B1, TPMT and DPYD use
// substring matching with a normal-function default, so an uncatalogued
// diplotype in those genes reads as normal rather than Unknown.
type PhenotypeClassifier struct {
	logger *logrus.Logger
}

// NewPhenotypeClassifier creates a new PhenotypeClassifier
func NewPhenotypeClassifier(logger *logrus.Logger) *PhenotypeClassifier {
	return &PhenotypeClassifier{logger: logger}
}

// Classify returns the phenotype for a gene and diplotype, or Unknown when
// the gene has no classification rules or the diplotype has no table entry.
func (c *PhenotypeClassifier) Classify(gene, diplotype string) string {
	switch gene {
	case "SLCO1B1":
		switch {
		case strings.Contains(diplotype, "*5/*5"):
			return FunctionPoor
		case strings.Contains(diplotype, "*1/*5"), strings.Contains(diplotype, "*5/*1b"):
			return FunctionIntermediate
		default:
			return FunctionNormal
		}
	case "TPMT":
		switch {
		case diplotypeHasAny(diplotype, "*2/*2", "*3A/*3A", "*3C/*3C"):
			return PhenotypePoor
		case diplotypeHasAny(diplotype, "*1/*2", "*1/*3A", "*1/*3C"):
			return PhenotypeIntermediate
		default:
			return PhenotypeNormal
		}
	case "DPYD":
		switch {
		case diplotypeHasAny(diplotype, "*2A/*2A", "*13/*13"):
			return PhenotypePoor
		case diplotypeHasAny(diplotype, "*1/*2A", "*1/*13"):
			return PhenotypeIntermediate
		default:
			return PhenotypeNormal
		}
	}

	table, ok := phenotypeTables[gene]
	if !ok {
		return PhenotypeUnknown
	}
	phenotype, ok := table[diplotype]
	if !ok {
		c.logger.WithFields(logrus.Fields{
			"gene":      gene,
			"diplotype": diplotype,
		}).Debug("diplotype not in phenotype table")
		return PhenotypeUnknown
	}
	return phenotype
}

func diplotypeHasAny(diplotype string, patterns ...string) bool {
	for _, p := range patterns {
		if strings.Contains(diplotype, p) {
			return true
		}
	}
	return false
}
