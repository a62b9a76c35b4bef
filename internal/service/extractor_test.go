package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmaguard-server/internal/domain"
)

const extractorVCF = `##fileformat=VCFv4.2
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	SAMPLE1
22	42524947	rs3892097	C	T	99	PASS	GENE=CYP2D6;STAR=*4;DP=42	GT:DP	0/1:35
10	94781859	rs4244285	G	A	80	PASS	GENE=CYP2C19	GT	1/1
1	1000	rs9999999	A	G	50	PASS	DP=12	GT	0/1
7	117559590	rs1799853	C	T	.	PASS	.	GT	0/1
`

func TestVariantExtractor_Extract(t *testing.T) {
	extractor := NewVariantExtractor(testLogger())

	variants, err := extractor.Extract(strings.NewReader(extractorVCF))
	require.NoError(t, err)
	require.Len(t, variants, 3, "non-curated rsIDs must be dropped")

	v := variants[0]
	assert.Equal(t, "rs3892097", v.RSID)
	assert.Equal(t, "CYP2D6", v.Gene)
	assert.Equal(t, "*4", v.Allele)
	assert.Equal(t, "0/1", v.Genotype)
	assert.True(t, v.HasGeneAnnotation)
	assert.True(t, v.HasStarAnnotation)
	assert.True(t, v.HasRSIDAnnotation)
	require.NotNil(t, v.QualityScore)
	assert.InDelta(t, 99.0, *v.QualityScore, 0.0001)
	require.NotNil(t, v.ReadDepth, "sample DP should be picked up")
	assert.Equal(t, 35, *v.ReadDepth, "sample DP takes priority over INFO DP")

	// missing QUAL and DP stay absent, not zero
	last := variants[2]
	assert.Equal(t, "rs1799853", last.RSID)
	assert.Nil(t, last.QualityScore)
	assert.Nil(t, last.ReadDepth)
	assert.False(t, last.HasStarAnnotation)
}

func TestVariantExtractor_GeneAnnotationOverride(t *testing.T) {
	extractor := NewVariantExtractor(testLogger())

	// rs1799853 is curated as CYP2C9 but the row says VKORC1
	const vcf = "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tS1\n" +
		"16\t31096368\trs1799853\tC\tT\t90\tPASS\tGENE=VKORC1\tGT\t0/1\n"

	variants, err := extractor.Extract(strings.NewReader(vcf))
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, "VKORC1", variants[0].Gene)
	assert.True(t, variants[0].HasGeneAnnotation)
}

func TestVariantExtractor_EmptyInput(t *testing.T) {
	extractor := NewVariantExtractor(testLogger())

	variants, err := extractor.Extract(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, variants)
}

func TestVariantExtractor_ExtractForGene(t *testing.T) {
	extractor := NewVariantExtractor(testLogger())

	variants, err := extractor.ExtractForGene(strings.NewReader(extractorVCF), "CYP2D6")
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, "rs3892097", variants[0].RSID)
}

func TestVariantExtractor_GenotypeIgnoresFormatLabels(t *testing.T) {
	extractor := NewVariantExtractor(testLogger())

	// some exports mislabel FORMAT; the call is still the first sample field
	const vcf = "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tSAMPLE1\n" +
		"22\t42524947\trs3892097\tC\tT\t99\tPASS\t.\tDP\t0/1\n"

	variants, err := extractor.Extract(strings.NewReader(vcf))
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, "0/1", variants[0].Genotype)
	assert.Equal(t, domain.ZygosityHet, variants[0].Zygosity)
}

func TestVariantExtractor_NoSampleColumn(t *testing.T) {
	extractor := NewVariantExtractor(testLogger())

	const vcf = "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
		"22\t42524947\trs3892097\tC\tT\t99\tPASS\tDP=42\n"

	variants, err := extractor.Extract(strings.NewReader(vcf))
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, "./.", variants[0].Genotype)
	assert.Equal(t, domain.ZygosityMissing, variants[0].Zygosity)
	require.NotNil(t, variants[0].ReadDepth, "INFO DP is the fallback")
	assert.Equal(t, 42, *variants[0].ReadDepth)
}
