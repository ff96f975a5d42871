package pipeline

import (
	"planforge/internal/types/plan"
	"planforge/internal/util/jsonutil"
)

var stageFeatures = stageConfig{
	name:        "feature_generation",
	system:      "You are a product-management expert. Break SaaS ideas into prioritized, buildable features with user stories and measurable success metrics. Respond with a single JSON object and nothing else.",
	temperature: 0.5,
	maxTokens:   2000,
}

var effortSizes = []string{"S", "M", "L", "XL"}

type featureWire struct {
	Name           *string  `json:"name"`
	Description    *string  `json:"description"`
	UserStory      *string  `json:"userStory"`
	Priority       *float64 `json:"priority"`
	Effort         *string  `json:"effort"`
	Dependencies   []string `json:"dependencies"`
	SuccessMetrics []string `json:"successMetrics"`
}

type featuresWire struct {
	MVPFeatures      []featureWire `json:"mvpFeatures"`
	GrowthFeatures   []featureWire `json:"growthFeatures"`
	AdvancedFeatures []featureWire `json:"advancedFeatures"`
	Roadmap          *struct {
		Phase1 []string `json:"phase1"`
		Phase2 []string `json:"phase2"`
		Phase3 []string `json:"phase3"`
	} `json:"roadmap"`
}

func fallbackFeatureGeneration() plan.FeatureGeneration {
	core := plan.Feature{
		Name:           "Core Functionality",
		Description:    "The essential capability that delivers the idea's primary value.",
		UserStory:      "As a user, I want to use the core functionality so that my primary problem is solved.",
		Priority:       10,
		Effort:         "L",
		Dependencies:   []string{},
		SuccessMetrics: []string{"Weekly active users"},
	}
	return plan.FeatureGeneration{
		MVPFeatures:      []plan.Feature{core},
		GrowthFeatures:   []plan.Feature{},
		AdvancedFeatures: []plan.Feature{},
		Roadmap: plan.Roadmap{
			Phase1: []string{core.Name},
			Phase2: []string{},
			Phase3: []string{},
		},
	}
}

func parseFeatureGeneration(raw string) (plan.FeatureGeneration, bool) {
	var wire featuresWire
	if err := jsonutil.UnmarshalFlex([]byte(raw), &wire); err != nil {
		return fallbackFeatureGeneration(), true
	}
	// A feature payload with no features at all is treated as unparseable:
	// downstream persistence would otherwise silently wipe the project's
	// feature set.
	if len(wire.MVPFeatures)+len(wire.GrowthFeatures)+len(wire.AdvancedFeatures) == 0 {
		return fallbackFeatureGeneration(), true
	}

	out := plan.FeatureGeneration{
		MVPFeatures:      mapFeatures(wire.MVPFeatures),
		GrowthFeatures:   mapFeatures(wire.GrowthFeatures),
		AdvancedFeatures: mapFeatures(wire.AdvancedFeatures),
	}
	if rm := wire.Roadmap; rm != nil {
		out.Roadmap = plan.Roadmap{
			Phase1: listOrEmpty(rm.Phase1),
			Phase2: listOrEmpty(rm.Phase2),
			Phase3: listOrEmpty(rm.Phase3),
		}
	} else {
		out.Roadmap = plan.Roadmap{Phase1: []string{}, Phase2: []string{}, Phase3: []string{}}
	}
	return out, false
}

func mapFeatures(wires []featureWire) []plan.Feature {
	out := make([]plan.Feature, 0, len(wires))
	for _, w := range wires {
		priority := 5
		if w.Priority != nil {
			priority = clampPriority(*w.Priority)
		}
		out = append(out, plan.Feature{
			Name:           strOr(w.Name, "Unnamed feature"),
			Description:    strOr(w.Description, ""),
			UserStory:      strOr(w.UserStory, ""),
			Priority:       priority,
			Effort:         enumOr(w.Effort, effortSizes, "M"),
			Dependencies:   listOrEmpty(w.Dependencies),
			SuccessMetrics: listOrEmpty(w.SuccessMetrics),
		})
	}
	return out
}
