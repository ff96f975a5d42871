package pipeline

import (
	"planforge/internal/types/plan"
	"planforge/internal/util/jsonutil"
)

var stageBusiness = stageConfig{
	name:        "business_analysis",
	system:      "You are a business-strategy expert specializing in SaaS products. Assess business models with realistic, defensible scores. Respond with a single JSON object and nothing else.",
	temperature: 0.3,
	maxTokens:   1500,
}

var (
	businessModelTypes = []string{"B2B", "B2C", "B2B2C", "Marketplace", "Platform"}
	revenueModels      = []string{"Subscription", "Freemium", "Usage-Based", "One-Time", "Hybrid"}
	competitionLevels  = []string{"Low", "Medium", "High"}
)

type businessWire struct {
	BusinessModelType    *string `json:"businessModelType"`
	RevenueModel         *string `json:"revenueModel"`
	ViabilityScore       *float64 `json:"viabilityScore"`
	ScalabilityScore     *float64 `json:"scalabilityScore"`
	CompetitiveLandscape *struct {
		CompetitionLevel      *string  `json:"competitionLevel"`
		MarketSaturation      *float64 `json:"marketSaturation"`
		DifferentiationPoints []string `json:"differentiationPoints"`
	} `json:"competitiveLandscape"`
	ConfidenceScore *float64 `json:"confidenceScore"`
}

// fallbackBusinessAnalysis is the fixed stage result substituted when the
// raw output cannot be parsed at all.
func fallbackBusinessAnalysis() plan.BusinessAnalysis {
	return plan.BusinessAnalysis{
		BusinessModelType: "B2B",
		RevenueModel:      "Subscription",
		ViabilityScore:    defaultScore,
		ScalabilityScore:  defaultScore,
		CompetitiveLandscape: plan.CompetitiveLandscape{
			CompetitionLevel:      "Medium",
			MarketSaturation:      defaultScore,
			DifferentiationPoints: []string{},
		},
		ConfidenceScore: defaultScore,
	}
}

// parseBusinessAnalysis turns raw stage output into a typed result. The
// second return reports whether the wholesale fallback was used.
func parseBusinessAnalysis(raw string) (plan.BusinessAnalysis, bool) {
	var wire businessWire
	if err := jsonutil.UnmarshalFlex([]byte(raw), &wire); err != nil {
		return fallbackBusinessAnalysis(), true
	}

	out := plan.BusinessAnalysis{
		BusinessModelType: enumOr(wire.BusinessModelType, businessModelTypes, "B2B"),
		RevenueModel:      enumOr(wire.RevenueModel, revenueModels, "Subscription"),
		ViabilityScore:    scoreOr(wire.ViabilityScore, defaultScore),
		ScalabilityScore:  scoreOr(wire.ScalabilityScore, defaultScore),
		ConfidenceScore:   scoreOr(wire.ConfidenceScore, defaultScore),
	}
	if cl := wire.CompetitiveLandscape; cl != nil {
		out.CompetitiveLandscape = plan.CompetitiveLandscape{
			CompetitionLevel:      enumOr(cl.CompetitionLevel, competitionLevels, "Medium"),
			MarketSaturation:      scoreOr(cl.MarketSaturation, defaultScore),
			DifferentiationPoints: listOrEmpty(cl.DifferentiationPoints),
		}
	} else {
		out.CompetitiveLandscape = fallbackBusinessAnalysis().CompetitiveLandscape
	}
	return out, false
}
