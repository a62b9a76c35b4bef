package guideline

import (
	"context"
	"fmt"

	"github.com/pharmaguard-server/internal/domain"
)

// SeedCorpus is the curated CPIC guideline corpus shipped with the service.
// Confidence reflects how directly the entry maps onto published CPIC
// dosing recommendations.
var SeedCorpus = []domain.Guideline{
	// CODEINE / CYP2D6
	{
		DrugName: "CODEINE", Gene: "CYP2D6", PhenotypeCode: "PM", PhenotypeName: "Poor Metabolizer",
		Summary:        "CYP2D6 poor metabolizers have significantly reduced conversion of codeine to morphine, leading to inadequate analgesia.",
		Mechanism:      "Codeine is a prodrug that requires activation by CYP2D6 to morphine. PMs lack this activity, resulting in 80-90% lower morphine concentrations.",
		Recommendation: "AVOID codeine. Use alternative analgesics not dependent on CYP2D6 (morphine, hydromorphone, oxycodone).",
		Source:         "CPIC Guideline for Codeine and CYP2D6 (2023)",
		GuidelineURL:   "https://cpicpgx.org/guidelines/codeine-and-cyp2d6/",
		Confidence:     0.95,
	},
	{
		DrugName: "CODEINE", Gene: "CYP2D6", PhenotypeCode: "IM", PhenotypeName: "Intermediate Metabolizer",
		Summary:        "CYP2D6 intermediate metabolizers have reduced conversion of codeine to morphine, potentially leading to suboptimal analgesia.",
		Mechanism:      "IMs have one functional allele, resulting in approximately 30-50% of normal enzyme activity and proportionally reduced morphine formation.",
		Recommendation: "Consider alternative analgesics or monitor closely for efficacy. If used, standard dosing may be inadequate.",
		Source:         "CPIC Guideline for Codeine and CYP2D6 (2023)",
		GuidelineURL:   "https://cpicpgx.org/guidelines/codeine-and-cyp2d6/",
		Confidence:     0.90,
	},
	{
		DrugName: "CODEINE", Gene: "CYP2D6", PhenotypeCode: "NM", PhenotypeName: "Normal Metabolizer",
		Summary:        "CYP2D6 normal metabolizers have expected conversion of codeine to morphine with standard dosing.",
		Mechanism:      "NMs have two functional alleles, providing normal enzyme activity and predictable morphine formation.",
		Recommendation: "Use codeine at standard doses. Monitor for efficacy and side effects.",
		Source:         "CPIC Guideline for Codeine and CYP2D6 (2023)",
		GuidelineURL:   "https://cpicpgx.org/guidelines/codeine-and-cyp2d6/",
		Confidence:     0.90,
	},
	{
		DrugName: "CODEINE", Gene: "CYP2D6", PhenotypeCode: "UM", PhenotypeName: "Ultrarapid Metabolizer",
		Summary:        "CYP2D6 ultrarapid metabolizers have dangerously increased conversion of codeine to morphine, risking life-threatening toxicity.",
		Mechanism:      "UMs have multiple functional alleles or gene duplications, leading to 2-4x higher morphine formation and risk of respiratory depression.",
		Recommendation: "AVOID codeine. Life-threatening toxicity risk. Use alternative analgesics.",
		Source:         "CPIC Guideline for Codeine and CYP2D6 (2023)",
		GuidelineURL:   "https://cpicpgx.org/guidelines/codeine-and-cyp2d6/",
		Confidence:     0.95,
	},

	// CLOPIDOGREL / CYP2C19
	{
		DrugName: "CLOPIDOGREL", Gene: "CYP2C19", PhenotypeCode: "PM", PhenotypeName: "Poor Metabolizer",
		Summary:        "CYP2C19 poor metabolizers have significantly reduced activation of clopidogrel, leading to higher risk of cardiovascular events.",
		Mechanism:      "Clopidogrel requires CYP2C19-mediated activation. PMs have two loss-of-function alleles, reducing active metabolite formation by 60-70%.",
		Recommendation: "AVOID clopidogrel. Use alternative antiplatelet therapy (prasugrel, ticagrelor).",
		Source:         "CPIC Guideline for Clopidogrel and CYP2C19 (2022)",
		GuidelineURL:   "https://cpicpgx.org/guidelines/clopidogrel-and-cyp2c19/",
		Confidence:     0.95,
	},
	{
		DrugName: "CLOPIDOGREL", Gene: "CYP2C19", PhenotypeCode: "IM", PhenotypeName: "Intermediate Metabolizer",
		Summary:        "CYP2C19 intermediate metabolizers have reduced clopidogrel activation, potentially increasing cardiovascular event risk.",
		Mechanism:      "IMs have one loss-of-function allele, reducing active metabolite formation by 30-50% compared to NMs.",
		Recommendation: "Consider alternative antiplatelet therapy or use higher doses with monitoring.",
		Source:         "CPIC Guideline for Clopidogrel and CYP2C19 (2022)",
		GuidelineURL:   "https://cpicpgx.org/guidelines/clopidogrel-and-cyp2c19/",
		Confidence:     0.90,
	},
	{
		DrugName: "CLOPIDOGREL", Gene: "CYP2C19", PhenotypeCode: "NM", PhenotypeName: "Normal Metabolizer",
		Summary:        "CYP2C19 normal metabolizers have expected clopidogrel activation with standard dosing.",
		Mechanism:      "NMs have two functional alleles, providing normal enzyme activity and therapeutic active metabolite levels.",
		Recommendation: "Use clopidogrel at standard dose (75mg/day).",
		Source:         "CPIC Guideline for Clopidogrel and CYP2C19 (2022)",
		GuidelineURL:   "https://cpicpgx.org/guidelines/clopidogrel-and-cyp2c19/",
		Confidence:     0.90,
	},
	{
		DrugName: "CLOPIDOGREL", Gene: "CYP2C19", PhenotypeCode: "RM", PhenotypeName: "Rapid Metabolizer",
		Summary:        "CYP2C19 rapid metabolizers have increased clopidogrel activation, potentially increasing bleeding risk.",
		Mechanism:      "RMs have a gain-of-function allele (*17), resulting in 20-40% higher active metabolite levels.",
		Recommendation: "Standard dosing is appropriate, but monitor for bleeding.",
		Source:         "CPIC Guideline for Clopidogrel and CYP2C19 (2022)",
		GuidelineURL:   "https://cpicpgx.org/guidelines/clopidogrel-and-cyp2c19/",
		Confidence:     0.85,
	},

	// WARFARIN / CYP2C9
	{
		DrugName: "WARFARIN", Gene: "CYP2C9", PhenotypeCode: "PM", PhenotypeName: "Poor Metabolizer",
		Summary:        "CYP2C9 poor metabolizers have significantly reduced warfarin clearance, requiring substantial dose reduction.",
		Mechanism:      "Warfarin is metabolized by CYP2C9. PMs have two reduced-function alleles (*2, *3), decreasing clearance by 70-90%.",
		Recommendation: "SIGNIFICANTLY REDUCE dose. Start at 1-2mg/day. Use pharmacogenetic dosing algorithms.",
		Source:         "CPIC Guideline for Warfarin and CYP2C9/VKORC1 (2021)",
		GuidelineURL:   "https://cpicpgx.org/guidelines/warfarin-and-cyp2c9-vkorc1/",
		Confidence:     0.95,
	},
	{
		DrugName: "WARFARIN", Gene: "CYP2C9", PhenotypeCode: "IM", PhenotypeName: "Intermediate Metabolizer",
		Summary:        "CYP2C9 intermediate metabolizers have reduced warfarin clearance, requiring moderate dose reduction.",
		Mechanism:      "IMs have one reduced-function allele, decreasing clearance by 30-50%.",
		Recommendation: "REDUCE dose by 20-30%. Start at 3-4mg/day. Monitor INR closely.",
		Source:         "CPIC Guideline for Warfarin and CYP2C9/VKORC1 (2021)",
		GuidelineURL:   "https://cpicpgx.org/guidelines/warfarin-and-cyp2c9-vkorc1/",
		Confidence:     0.90,
	},
	{
		DrugName: "WARFARIN", Gene: "CYP2C9", PhenotypeCode: "NM", PhenotypeName: "Normal Metabolizer",
		Summary:        "CYP2C9 normal metabolizers have expected warfarin clearance with standard dosing.",
		Mechanism:      "NMs have two functional alleles, providing normal enzyme activity.",
		Recommendation: "Start with standard dosing (5mg/day). Monitor INR and adjust based on response.",
		Source:         "CPIC Guideline for Warfarin and CYP2C9/VKORC1 (2021)",
		GuidelineURL:   "https://cpicpgx.org/guidelines/warfarin-and-cyp2c9-vkorc1/",
		Confidence:     0.90,
	},

	// SIMVASTATIN / SLCO1B1
	{
		DrugName: "SIMVASTATIN", Gene: "SLCO1B1", PhenotypeCode: "PM", PhenotypeName: "Poor Function",
		Summary:        "SLCO1B1 poor function significantly increases simvastatin exposure and myopathy risk.",
		Mechanism:      "SLCO1B1 transports statins into hepatocytes. Poor function variants (e.g., *5/*5) reduce hepatic uptake by 70-90%.",
		Recommendation: "SIGNIFICANTLY REDUCE dose or consider alternative statin. Max dose 20mg/day.",
		Source:         "CPIC Guideline for Simvastatin and SLCO1B1 (2022)",
		GuidelineURL:   "https://cpicpgx.org/guidelines/simvastatin-and-slco1b1/",
		Confidence:     0.95,
	},
	{
		DrugName: "SIMVASTATIN", Gene: "SLCO1B1", PhenotypeCode: "IM", PhenotypeName: "Intermediate Function",
		Summary:        "SLCO1B1 intermediate function moderately increases simvastatin exposure.",
		Mechanism:      "Heterozygous variants (e.g., *1/*5) reduce hepatic uptake by 30-50%.",
		Recommendation: "REDUCE dose or consider alternative statin. Max dose 40mg/day.",
		Source:         "CPIC Guideline for Simvastatin and SLCO1B1 (2022)",
		GuidelineURL:   "https://cpicpgx.org/guidelines/simvastatin-and-slco1b1/",
		Confidence:     0.90,
	},
	{
		DrugName: "SIMVASTATIN", Gene: "SLCO1B1", PhenotypeCode: "NM", PhenotypeName: "Normal Function",
		Summary:        "SLCO1B1 normal function provides expected simvastatin disposition.",
		Mechanism:      "Normal SLCO1B1 activity ensures adequate hepatic uptake and clearance.",
		Recommendation: "Use standard doses (up to 40mg/day).",
		Source:         "CPIC Guideline for Simvastatin and SLCO1B1 (2022)",
		GuidelineURL:   "https://cpicpgx.org/guidelines/simvastatin-and-slco1b1/",
		Confidence:     0.90,
	},

	// AZATHIOPRINE / TPMT
	{
		DrugName: "AZATHIOPRINE", Gene: "TPMT", PhenotypeCode: "PM", PhenotypeName: "Poor Metabolizer",
		Summary:        "TPMT poor metabolizers have life-threatening myelosuppression risk with azathioprine.",
		Mechanism:      "TPMT inactivates azathioprine metabolites. PMs have no TPMT activity, leading to 10-15x higher thioguanine nucleotide accumulation.",
		Recommendation: "AVOID azathioprine. Use alternative immunosuppressants or reduce dose by 90% with extreme caution.",
		Source:         "CPIC Guideline for Azathioprine and TPMT (2021)",
		GuidelineURL:   "https://cpicpgx.org/guidelines/azathioprine-and-tpmt/",
		Confidence:     0.95,
	},
	{
		DrugName: "AZATHIOPRINE", Gene: "TPMT", PhenotypeCode: "IM", PhenotypeName: "Intermediate Metabolizer",
		Summary:        "TPMT intermediate metabolizers have increased myelosuppression risk requiring dose reduction.",
		Mechanism:      "Heterozygous variants reduce TPMT activity by 50-70%, moderately increasing thioguanine nucleotide levels.",
		Recommendation: "REDUCE dose by 30-70%. Start at 30-50% of standard dose.",
		Source:         "CPIC Guideline for Azathioprine and TPMT (2021)",
		GuidelineURL:   "https://cpicpgx.org/guidelines/azathioprine-and-tpmt/",
		Confidence:     0.90,
	},
	{
		DrugName: "AZATHIOPRINE", Gene: "TPMT", PhenotypeCode: "NM", PhenotypeName: "Normal Metabolizer",
		Summary:        "TPMT normal metabolizers have expected azathioprine metabolism with standard dosing.",
		Mechanism:      "Normal TPMT activity ensures adequate inactivation of metabolites.",
		Recommendation: "Use standard doses (2-3 mg/kg/day).",
		Source:         "CPIC Guideline for Azathioprine and TPMT (2021)",
		GuidelineURL:   "https://cpicpgx.org/guidelines/azathioprine-and-tpmt/",
		Confidence:     0.90,
	},

	// FLUOROURACIL / DPYD
	{
		DrugName: "FLUOROURACIL", Gene: "DPYD", PhenotypeCode: "PM", PhenotypeName: "Poor Metabolizer",
		Summary:        "DPYD poor metabolizers have life-threatening toxicity risk with fluorouracil.",
		Mechanism:      "DPYD inactivates >80% of fluorouracil. PMs have no DPYD activity, leading to severe, prolonged drug exposure.",
		Recommendation: "AVOID fluorouracil. Use alternative chemotherapy.",
		Source:         "CPIC Guideline for Fluorouracil and DPYD (2022)",
		GuidelineURL:   "https://cpicpgx.org/guidelines/fluorouracil-and-dpyd/",
		Confidence:     0.95,
	},
	{
		DrugName: "FLUOROURACIL", Gene: "DPYD", PhenotypeCode: "IM", PhenotypeName: "Intermediate Metabolizer",
		Summary:        "DPYD intermediate metabolizers have increased toxicity risk requiring dose reduction.",
		Mechanism:      "Heterozygous variants reduce DPYD activity by 30-50%, moderately increasing drug exposure.",
		Recommendation: "REDUCE dose by 50%. Monitor closely for toxicity.",
		Source:         "CPIC Guideline for Fluorouracil and DPYD (2022)",
		GuidelineURL:   "https://cpicpgx.org/guidelines/fluorouracil-and-dpyd/",
		Confidence:     0.90,
	},
	{
		DrugName: "FLUOROURACIL", Gene: "DPYD", PhenotypeCode: "NM", PhenotypeName: "Normal Metabolizer",
		Summary:        "DPYD normal metabolizers have expected fluorouracil clearance.",
		Mechanism:      "Normal DPYD activity ensures adequate drug inactivation.",
		Recommendation: "Use standard doses.",
		Source:         "CPIC Guideline for Fluorouracil and DPYD (2022)",
		GuidelineURL:   "https://cpicpgx.org/guidelines/fluorouracil-and-dpyd/",
		Confidence:     0.90,
	},

	// FLUOXETINE / CYP2D6
	{
		DrugName: "FLUOXETINE", Gene: "CYP2D6", PhenotypeCode: "PM", PhenotypeName: "Poor Metabolizer",
		Summary:        "CYP2D6 poor metabolizers have significantly higher fluoxetine concentrations, increasing side effect risk.",
		Mechanism:      "Fluoxetine is metabolized by CYP2D6. PMs have 2-4x higher drug levels.",
		Recommendation: "REDUCE dose by 50%. Start at 10mg/day.",
		Source:         "CPIC Guideline for SSRIs and CYP2D6 (2022)",
		GuidelineURL:   "https://cpicpgx.org/guidelines/ssri-and-cyp2d6/",
		Confidence:     0.90,
	},
	{
		DrugName: "FLUOXETINE", Gene: "CYP2D6", PhenotypeCode: "NM", PhenotypeName: "Normal Metabolizer",
		Summary:        "CYP2D6 normal metabolizers have expected fluoxetine metabolism.",
		Mechanism:      "Normal CYP2D6 activity provides standard drug clearance.",
		Recommendation: "Use standard doses (20mg/day).",
		Source:         "CPIC Guideline for SSRIs and CYP2D6 (2022)",
		GuidelineURL:   "https://cpicpgx.org/guidelines/ssri-and-cyp2d6/",
		Confidence:     0.85,
	},

	// PAROXETINE / CYP2D6
	{
		DrugName: "PAROXETINE", Gene: "CYP2D6", PhenotypeCode: "PM", PhenotypeName: "Poor Metabolizer",
		Summary:        "CYP2D6 poor metabolizers have significantly higher paroxetine concentrations, increasing side effect risk.",
		Mechanism:      "Paroxetine is extensively metabolized by CYP2D6. PMs have 3-5x higher drug levels.",
		Recommendation: "REDUCE dose by 50%. Start at 10mg/day.",
		Source:         "CPIC Guideline for SSRIs and CYP2D6 (2022)",
		GuidelineURL:   "https://cpicpgx.org/guidelines/ssri-and-cyp2d6/",
		Confidence:     0.90,
	},
	{
		DrugName: "PAROXETINE", Gene: "CYP2D6", PhenotypeCode: "NM", PhenotypeName: "Normal Metabolizer",
		Summary:        "CYP2D6 normal metabolizers have expected paroxetine metabolism.",
		Mechanism:      "Normal CYP2D6 activity provides standard drug clearance.",
		Recommendation: "Use standard doses (20mg/day).",
		Source:         "CPIC Guideline for SSRIs and CYP2D6 (2022)",
		GuidelineURL:   "https://cpicpgx.org/guidelines/ssri-and-cyp2d6/",
		Confidence:     0.85,
	},
}

// Seed writes the full curated corpus into a store.
func Seed(ctx context.Context, seeder Seeder) (int, error) {
	written := 0
	for i := range SeedCorpus {
		if err := seeder.Upsert(ctx, &SeedCorpus[i]); err != nil {
			return written, fmt.Errorf("failed to seed %s/%s: %w", SeedCorpus[i].DrugName, SeedCorpus[i].PhenotypeCode, err)
		}
		written++
	}
	return written, nil
}
