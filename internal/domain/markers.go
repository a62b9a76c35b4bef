package domain

import "strings"

// Marker describes one curated pharmacogenomic marker variant: the star
// allele it tags, its functional consequence, and the CPIC evidence level
// of the guideline that covers it.
type Marker struct {
	Gene      string
	Allele    string
	Function  string
	CPICLevel CPICLevel
}

// Markers is the curated marker table keyed by rsID. Only variants listed
// here participate in diplotype resolution; everything else in an uploaded
// VCF is ignored.
var Markers = map[string]Marker{
	// CYP2D6
	"rs1065852": {Gene: "CYP2D6", Allele: "*4", Function: "Poor metabolizer", CPICLevel: CPICLevelA},
	"rs3892097": {Gene: "CYP2D6", Allele: "*4", Function: "Poor metabolizer", CPICLevel: CPICLevelA},
	"rs5030655": {Gene: "CYP2D6", Allele: "*6", Function: "Poor metabolizer", CPICLevel: CPICLevelA},
	"rs5030865": {Gene: "CYP2D6", Allele: "*3", Function: "Poor metabolizer", CPICLevel: CPICLevelA},

	// CYP2C19
	"rs4244285":  {Gene: "CYP2C19", Allele: "*2", Function: "Loss of function", CPICLevel: CPICLevelA},
	"rs4986893":  {Gene: "CYP2C19", Allele: "*3", Function: "Loss of function", CPICLevel: CPICLevelA},
	"rs12248560": {Gene: "CYP2C19", Allele: "*17", Function: "Gain of function", CPICLevel: CPICLevelA},

	// CYP2C9
	"rs1799853":  {Gene: "CYP2C9", Allele: "*2", Function: "Reduced function", CPICLevel: CPICLevelA},
	"rs1057910":  {Gene: "CYP2C9", Allele: "*3", Function: "Reduced function", CPICLevel: CPICLevelA},
	"rs28371686": {Gene: "CYP2C9", Allele: "*5", Function: "Reduced function", CPICLevel: CPICLevelA},
	"rs9332131":  {Gene: "CYP2C9", Allele: "*6", Function: "Reduced function", CPICLevel: CPICLevelA},

	// SLCO1B1
	"rs4149056": {Gene: "SLCO1B1", Allele: "*5", Function: "Reduced function", CPICLevel: CPICLevelA},
	"rs2306283": {Gene: "SLCO1B1", Allele: "*1b", Function: "Normal function", CPICLevel: CPICLevelA},

	// TPMT
	"rs1800462": {Gene: "TPMT", Allele: "*2", Function: "Loss of function", CPICLevel: CPICLevelA},
	"rs1800460": {Gene: "TPMT", Allele: "*3B", Function: "Loss of function", CPICLevel: CPICLevelA},
	"rs1142345": {Gene: "TPMT", Allele: "*3C", Function: "Loss of function", CPICLevel: CPICLevelA},

	// DPYD
	"rs3918290":  {Gene: "DPYD", Allele: "*2A", Function: "Loss of function", CPICLevel: CPICLevelA},
	"rs55886062": {Gene: "DPYD", Allele: "*13", Function: "Loss of function", CPICLevel: CPICLevelA},
	"rs67376798": {Gene: "DPYD", Allele: "*9B", Function: "Reduced function", CPICLevel: CPICLevelA},
	"rs75017182": {Gene: "DPYD", Allele: "HapB3", Function: "Reduced function", CPICLevel: CPICLevelA},
}

// DrugGenes maps supported drug names (upper case) to their primary
// pharmacogene. Drugs outside this map get the unknown-drug response.
var DrugGenes = map[string]string{
	"CODEINE":      "CYP2D6",
	"FLUOXETINE":   "CYP2D6",
	"PAROXETINE":   "CYP2D6",
	"RISPERIDONE":  "CYP2D6",
	"TAMOXIFEN":    "CYP2D6",
	"CLOPIDOGREL":  "CYP2C19",
	"OMEPRAZOLE":   "CYP2C19",
	"WARFARIN":     "CYP2C9",
	"PHENYTOIN":    "CYP2C9",
	"IBUPROFEN":    "CYP2C9",
	"DICLOFENAC":   "CYP2C9",
	"SIMVASTATIN":  "SLCO1B1",
	"AZATHIOPRINE": "TPMT",
	"FLUOROURACIL": "DPYD",
}

// NormalizeDrug canonicalizes a drug name for lookups and responses.
func NormalizeDrug(drug string) string {
	return strings.ToUpper(strings.TrimSpace(drug))
}

// PrimaryGene returns the pharmacogene for a drug name, case-insensitively.
func PrimaryGene(drug string) (string, bool) {
	gene, ok := DrugGenes[NormalizeDrug(drug)]
	return gene, ok
}

// DrugGenePanels maps each supported drug to every gene relevant to it,
// companion genes included. Used for polypharmacy bottleneck detection.
var DrugGenePanels = map[string][]string{
	"CODEINE":      {"CYP2D6"},
	"WARFARIN":     {"CYP2C9", "VKORC1"},
	"CLOPIDOGREL":  {"CYP2C19"},
	"SIMVASTATIN":  {"SLCO1B1"},
	"AZATHIOPRINE": {"TPMT"},
	"FLUOROURACIL": {"DPYD"},
	"FLUOXETINE":   {"CYP2D6"},
	"PAROXETINE":   {"CYP2D6"},
	"RISPERIDONE":  {"CYP2D6"},
	"TAMOXIFEN":    {"CYP2D6"},
	"OMEPRAZOLE":   {"CYP2C19"},
	"PHENYTOIN":    {"CYP2C9"},
	"IBUPROFEN":    {"CYP2C9"},
	"DICLOFENAC":   {"CYP2C9"},
}

// CPICFallbackActions supplies a minimal per-drug clinical action when
// neither the advisory model nor the rule engine yields recommendation text.
var CPICFallbackActions = map[string]string{
	"CODEINE":      "CPIC-guided action: avoid codeine in poor/ultrarapid CYP2D6 metabolizers; otherwise use standard dosing with monitoring.",
	"WARFARIN":     "CPIC-guided action: use genotype-informed initial dosing and monitor INR closely, with dose reduction for reduced-function CYP2C9/VKORC1 variants.",
	"CLOPIDOGREL":  "CPIC-guided action: consider alternative antiplatelet therapy in CYP2C19 loss-of-function phenotypes; standard dosing otherwise.",
	"SIMVASTATIN":  "CPIC-guided action: reduce simvastatin dose or consider alternative statin for decreased-function SLCO1B1 phenotypes.",
	"AZATHIOPRINE": "CPIC-guided action: reduce dose substantially for intermediate TPMT activity and avoid/near-avoid in poor metabolizers.",
	"FLUOROURACIL": "CPIC-guided action: major dose reduction or alternative therapy for reduced-function DPYD phenotypes.",
	"FLUOXETINE":   "CPIC-guided action: consider lower starting dose with CYP2D6 poor/intermediate metabolizer phenotypes.",
	"PAROXETINE":   "CPIC-guided action: consider lower starting dose with CYP2D6 poor/intermediate metabolizer phenotypes.",
	"RISPERIDONE":  "CPIC-guided action: consider lower starting dose and slow titration in CYP2D6 poor metabolizers.",
	"IBUPROFEN":    "CPIC-guided action: consider lower dose/monitoring in reduced-function CYP2C9 phenotypes.",
	"OMEPRAZOLE":   "CPIC-guided action: consider dose increase for rapid CYP2C19 metabolizers and dose reduction for poor metabolizers.",
}

// GenericFallbackAction is the last-resort recommendation when no per-drug
// fallback exists.
const GenericFallbackAction = "CPIC-guided dosing recommendation unavailable from source response; perform clinician-reviewed pharmacogenomic assessment."

// CPICGuidelineURLs maps gene symbols to the canonical cpicpgx.org guideline
// page used for citation fallbacks.
var CPICGuidelineURLs = map[string]string{
	"CYP2D6":  "https://cpicpgx.org/guidelines/guideline-for-codeine-and-cyp2d6/",
	"CYP2C19": "https://cpicpgx.org/guidelines/guideline-for-clopidogrel-and-cyp2c19/",
	"CYP2C9":  "https://cpicpgx.org/guidelines/guideline-for-warfarin-and-cyp2c9-and-vkorc1/",
	"SLCO1B1": "https://cpicpgx.org/guidelines/guideline-for-simvastatin-and-slco1b1/",
	"TPMT":    "https://cpicpgx.org/guidelines/guideline-for-thiopurines-and-tpmt/",
	"DPYD":    "https://cpicpgx.org/guidelines/guideline-for-fluoropyrimidines-and-dpyd/",
}
