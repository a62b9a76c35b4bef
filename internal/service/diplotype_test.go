package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pharmaguard-server/internal/domain"
)

func TestDiplotypeResolver_Resolve(t *testing.T) {
	resolver := NewDiplotypeResolver(testLogger())

	tests := []struct {
		name     string
		gene     string
		variants []domain.Variant
		want     string
	}{
		{
			name:     "no variants defaults to wild type",
			gene:     "CYP2D6",
			variants: nil,
			want:     "*1/*1",
		},
		{
			name: "heterozygous single marker pads with reference",
			gene: "CYP2C19",
			variants: []domain.Variant{
				markerVariant("rs4244285", "0/1"),
			},
			want: "*1/*2",
		},
		{
			name: "homozygous alt doubles the allele",
			gene: "CYP2D6",
			variants: []domain.Variant{
				markerVariant("rs3892097", "1/1"),
			},
			want: "*4/*4",
		},
		{
			name: "phased genotype separators are equivalent",
			gene: "CYP2D6",
			variants: []domain.Variant{
				markerVariant("rs3892097", "1|1"),
			},
			want: "*4/*4",
		},
		{
			// only the first two allele contributions are used, so the
			// second het marker never enters the pair
			name: "compound heterozygous truncates to first contribution",
			gene: "CYP2C19",
			variants: []domain.Variant{
				markerVariant("rs4244285", "0/1"),
				markerVariant("rs4986893", "0/1"),
			},
			want: "*1/*2",
		},
		{
			name: "hom-ref calls contribute nothing",
			gene: "CYP2D6",
			variants: []domain.Variant{
				markerVariant("rs3892097", "0/0"),
			},
			want: "*1/*1",
		},
		{
			name: "missing calls contribute nothing",
			gene: "CYP2D6",
			variants: []domain.Variant{
				markerVariant("rs3892097", "./."),
			},
			want: "*1/*1",
		},
		{
			name: "other genes are ignored",
			gene: "CYP2D6",
			variants: []domain.Variant{
				markerVariant("rs4244285", "1/1"),
			},
			want: "*1/*1",
		},
		{
			name: "more than two alleles truncates to first two",
			gene: "CYP2D6",
			variants: []domain.Variant{
				markerVariant("rs3892097", "1/1"),
				markerVariant("rs5030655", "1/1"),
			},
			want: "*4/*4",
		},
		{
			name: "reference allele sorts first",
			gene: "SLCO1B1",
			variants: []domain.Variant{
				markerVariant("rs4149056", "0/1"),
			},
			want: "*1/*5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolver.Resolve(tt.gene, tt.variants)
			assert.Equal(t, tt.want, got)
		})
	}
}
