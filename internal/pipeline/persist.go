package pipeline

import (
	"fmt"
	"time"

	"planforge/internal/repository/feature"
	"planforge/internal/repository/techstack"
	"planforge/internal/repository/validation"
	"planforge/internal/types/plan"
)

// Fixed mapping heuristics. These are deliberate placeholders kept in one
// place so deriving them from the analysis later is a local change; see
// DESIGN.md.
var (
	// defaultRiskSeverity is applied to every flattened risk entry.
	defaultRiskSeverity = "medium"

	// defaultUserPersona is applied to every persisted feature.
	defaultUserPersona = "Primary User"

	// componentHeuristics weight each stack component type.
	componentHeuristics = map[string]componentHeuristic{
		"frontend":       {Difficulty: "intermediate", Cost: "free", Popularity: 85},
		"backend":        {Difficulty: "intermediate", Cost: "free", Popularity: 80},
		"database":       {Difficulty: "beginner", Cost: "low", Popularity: 75},
		"infrastructure": {Difficulty: "advanced", Cost: "medium", Popularity: 90},
		"thirdParty":     {Difficulty: "beginner", Cost: "medium", Popularity: 70},
	}
)

type componentHeuristic struct {
	Difficulty string
	Cost       string
	Popularity int
}

// toValidationRecord maps the market-validation result (plus the business
// analysis it depends on) into the validation record for one idea.
// Differentiation opportunities come from the business analysis, not the
// market validation.
func toValidationRecord(ideaID string, business plan.BusinessAnalysis, market plan.MarketValidation, now time.Time) validation.Record {
	risks := make([]validation.Risk, 0,
		len(market.RiskAssessment.MarketRisks)+
			len(market.RiskAssessment.TechnicalRisks)+
			len(market.RiskAssessment.FinancialRisks)+
			len(market.RiskAssessment.CompetitiveRisks))
	appendRisks := func(kind string, descs []string) {
		for _, d := range descs {
			risks = append(risks, validation.Risk{
				Type:        kind,
				Description: d,
				Severity:    defaultRiskSeverity,
			})
		}
	}
	appendRisks("market", market.RiskAssessment.MarketRisks)
	appendRisks("technical", market.RiskAssessment.TechnicalRisks)
	appendRisks("financial", market.RiskAssessment.FinancialRisks)
	appendRisks("competitive", market.RiskAssessment.CompetitiveRisks)

	return validation.Record{
		IdeaID:                       ideaID,
		MarketPotential:              market.ValidationScore,
		DifferentiationOpportunities: listOrEmpty(business.CompetitiveLandscape.DifferentiationPoints),
		Risks:                        risks,
		// Reserved for future enrichment.
		SimilarProducts:        []string{},
		ImprovementSuggestions: []string{},
		UpdatedAt:              now,
	}
}

// priorityBucket maps a 1-10 priority onto the coarse persistence enum.
func priorityBucket(priority int) string {
	switch {
	case priority >= 9:
		return feature.PriorityCritical
	case priority >= 7:
		return feature.PriorityHigh
	case priority >= 5:
		return feature.PriorityMedium
	default:
		return feature.PriorityLow
	}
}

// toFeatureRecords flattens all three tiers into persistence records. The
// caller replaces the project's full feature set with the returned slice.
func toFeatureRecords(projectID string, gen plan.FeatureGeneration, newID func() string, now time.Time) []feature.Record {
	out := make([]feature.Record, 0, len(gen.MVPFeatures)+len(gen.GrowthFeatures)+len(gen.AdvancedFeatures))
	appendTier := func(category string, feats []plan.Feature) {
		for _, f := range feats {
			out = append(out, feature.Record{
				ID:          newID(),
				ProjectID:   projectID,
				Name:        f.Name,
				Description: f.Description,
				UserStory:   f.UserStory,
				Category:    category,
				Priority:    priorityBucket(f.Priority),
				// Complexity mirrors the 1-10 priority directly.
				Complexity:     clampPriority(float64(f.Priority)),
				Effort:         f.Effort,
				UserPersona:    defaultUserPersona,
				Dependencies:   listOrEmpty(f.Dependencies),
				SuccessMetrics: listOrEmpty(f.SuccessMetrics),
				CreatedAt:      now,
			})
		}
	}
	appendTier(feature.CategoryMVP, gen.MVPFeatures)
	appendTier(feature.CategoryGrowth, gen.GrowthFeatures)
	appendTier(feature.CategoryFuture, gen.AdvancedFeatures)
	return out
}

// toTechStackRecord maps the tech-stack result into its per-project record.
// Each component becomes a single weighted option; the weights come from the
// fixed per-component heuristics, not the analysis output.
func toTechStackRecord(projectID string, ts plan.TechStack, now time.Time) techstack.Record {
	alternatives := make([]string, 0, 5)
	for _, c := range []plan.StackComponent{ts.Frontend, ts.Backend, ts.Database} {
		for _, alt := range c.Alternatives {
			if len(alternatives) == 5 {
				break
			}
			alternatives = append(alternatives, alt)
		}
	}

	return techstack.Record{
		ProjectID:      projectID,
		Frontend:       []techstack.Option{toOption("frontend", ts.Frontend)},
		Backend:        []techstack.Option{toOption("backend", ts.Backend)},
		Database:       []techstack.Option{toOption("database", ts.Database)},
		Infrastructure: []techstack.Option{toOption("infrastructure", ts.Infrastructure)},
		ThirdParty:     []techstack.Option{toOption("thirdParty", ts.ThirdParty)},
		Rationale: techstack.Rationale{
			Reasoning: fmt.Sprintf("Estimated development cost %s, monthly running cost %s; scaling: %s.",
				ts.CostEstimate.Development, ts.CostEstimate.Monthly, ts.CostEstimate.Scaling),
			Alternatives: alternatives,
		},
		UpdatedAt: now,
	}
}

func toOption(componentType string, c plan.StackComponent) techstack.Option {
	h := componentHeuristics[componentType]
	return techstack.Option{
		Name:        c.Primary,
		Description: c.Reasoning,
		Pros:        listOrEmpty(c.Pros),
		Cons:        listOrEmpty(c.Cons),
		Difficulty:  h.Difficulty,
		Cost:        h.Cost,
		Popularity:  h.Popularity,
	}
}
