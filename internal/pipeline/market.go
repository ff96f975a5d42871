package pipeline

import (
	"planforge/internal/types/plan"
	"planforge/internal/util/jsonutil"
)

var stageMarket = stageConfig{
	name:        "market_validation",
	system:      "You are a market-research expert. Estimate market sizes, audiences and risks for SaaS products with concrete, sourced-sounding figures. Respond with a single JSON object and nothing else.",
	temperature: 0.4,
	maxTokens:   1800,
}

type marketWire struct {
	MarketSize *struct {
		TAM *string `json:"tam"`
		SAM *string `json:"sam"`
		SOM *string `json:"som"`
	} `json:"marketSize"`
	TargetAudience *struct {
		PrimarySegment      *string  `json:"primarySegment"`
		SecondarySegments   []string `json:"secondarySegments"`
		PainPoints          []string `json:"painPoints"`
		WillingnessToPay    *string  `json:"willingnessToPay"`
		AcquisitionChannels []string `json:"acquisitionChannels"`
	} `json:"targetAudience"`
	RiskAssessment *struct {
		MarketRisks      []string `json:"marketRisks"`
		TechnicalRisks   []string `json:"technicalRisks"`
		FinancialRisks   []string `json:"financialRisks"`
		CompetitiveRisks []string `json:"competitiveRisks"`
	} `json:"riskAssessment"`
	ValidationScore *float64 `json:"validationScore"`
}

func fallbackMarketValidation() plan.MarketValidation {
	return plan.MarketValidation{
		MarketSize: plan.MarketSize{
			TAM: "Unknown",
			SAM: "Unknown",
			SOM: "Unknown",
		},
		TargetAudience: plan.AudienceAnalysis{
			PrimarySegment:      "General consumers",
			SecondarySegments:   []string{},
			PainPoints:          []string{},
			WillingnessToPay:    "Unknown",
			AcquisitionChannels: []string{},
		},
		RiskAssessment: plan.RiskAssessment{
			MarketRisks:      []string{},
			TechnicalRisks:   []string{},
			FinancialRisks:   []string{},
			CompetitiveRisks: []string{},
		},
		ValidationScore: defaultScore,
	}
}

func parseMarketValidation(raw string) (plan.MarketValidation, bool) {
	var wire marketWire
	if err := jsonutil.UnmarshalFlex([]byte(raw), &wire); err != nil {
		return fallbackMarketValidation(), true
	}

	out := fallbackMarketValidation()
	out.ValidationScore = scoreOr(wire.ValidationScore, defaultScore)
	if ms := wire.MarketSize; ms != nil {
		out.MarketSize = plan.MarketSize{
			TAM: strOr(ms.TAM, "Unknown"),
			SAM: strOr(ms.SAM, "Unknown"),
			SOM: strOr(ms.SOM, "Unknown"),
		}
	}
	if ta := wire.TargetAudience; ta != nil {
		out.TargetAudience = plan.AudienceAnalysis{
			PrimarySegment:      strOr(ta.PrimarySegment, "General consumers"),
			SecondarySegments:   listOrEmpty(ta.SecondarySegments),
			PainPoints:          listOrEmpty(ta.PainPoints),
			WillingnessToPay:    strOr(ta.WillingnessToPay, "Unknown"),
			AcquisitionChannels: listOrEmpty(ta.AcquisitionChannels),
		}
	}
	if ra := wire.RiskAssessment; ra != nil {
		out.RiskAssessment = plan.RiskAssessment{
			MarketRisks:      listOrEmpty(ra.MarketRisks),
			TechnicalRisks:   listOrEmpty(ra.TechnicalRisks),
			FinancialRisks:   listOrEmpty(ra.FinancialRisks),
			CompetitiveRisks: listOrEmpty(ra.CompetitiveRisks),
		}
	}
	return out, false
}
