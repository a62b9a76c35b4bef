package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhenotypeClassifier_Classify(t *testing.T) {
	classifier := NewPhenotypeClassifier(testLogger())

	tests := []struct {
		gene      string
		diplotype string
		want      string
	}{
		{"CYP2D6", "*4/*4", PhenotypePoor},
		{"CYP2D6", "*1/*4", PhenotypeIntermediate},
		{"CYP2D6", "*1/*1", PhenotypeNormal},
		{"CYP2D6", "*2/*2", PhenotypeNormal},
		{"CYP2D6", "*1/*1xN", PhenotypeUltrarapid},
		{"CYP2C19", "*2/*2", PhenotypePoor},
		{"CYP2C19", "*1/*2", PhenotypeIntermediate},
		{"CYP2C19", "*1/*17", PhenotypeRapid},
		{"CYP2C19", "*17/*17", PhenotypeRapid},
		{"CYP2C9", "*2/*3", PhenotypePoor},
		{"CYP2C9", "*1/*3", PhenotypeIntermediate},
		{"CYP2C9", "*2/*2", PhenotypeIntermediate},
		// *5 and *6 combinations have no CYP2C9 table entries
		{"CYP2C9", "*5/*5", PhenotypeUnknown},
		{"CYP2C9", "*1/*5", PhenotypeUnknown},
		{"CYP2C9", "*1/*6", PhenotypeUnknown},
		{"SLCO1B1", "*5/*5", FunctionPoor},
		{"SLCO1B1", "*1/*5", FunctionIntermediate},
		{"SLCO1B1", "*1/*1b", FunctionNormal},
		{"SLCO1B1", "*1b/*1b", FunctionNormal},
		{"TPMT", "*2/*2", PhenotypePoor},
		{"TPMT", "*1/*3C", PhenotypeIntermediate},
		// *3B has no catalogued phenotype; its risk surfaces through the
		// azathioprine allele count instead
		{"TPMT", "*3B/*3B", PhenotypeNormal},
		{"TPMT", "*1/*1", PhenotypeNormal},
		{"DPYD", "*2A/*2A", PhenotypePoor},
		{"DPYD", "*1/*2A", PhenotypeIntermediate},
		{"DPYD", "*1/*9B", PhenotypeNormal},
		{"DPYD", "*1/HapB3", PhenotypeNormal},
		// unmatched CYP diplotypes and unknown genes report Unknown, never guess
		{"CYP2D6", "*3/*4", PhenotypeUnknown},
		{"CYP2D6", "*2/*41", PhenotypeUnknown},
		{"VKORC1", "*1/*1", PhenotypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.gene+" "+tt.diplotype, func(t *testing.T) {
			assert.Equal(t, tt.want, classifier.Classify(tt.gene, tt.diplotype))
		})
	}
}
