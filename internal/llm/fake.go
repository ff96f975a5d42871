package llm

import (
	"context"
	"encoding/json"
)

// FakeClient returns deterministic, minimal JSON payloads per stage for
// offline mode and tests. Cost and token figures are fixed so accumulation
// logic stays observable.
type FakeClient struct{}

func NewFakeClient() *FakeClient { return &FakeClient{} }

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) Complete(ctx context.Context, prompt string, opts Options) (Completion, error) {
	var obj any
	switch StageFrom(ctx) {
	case "business_analysis":
		obj = map[string]any{
			"businessModelType": "B2B",
			"revenueModel":      "Subscription",
			"viabilityScore":    70,
			"scalabilityScore":  65,
			"competitiveLandscape": map[string]any{
				"competitionLevel":      "Medium",
				"marketSaturation":      55,
				"differentiationPoints": []string{"fake differentiation"},
			},
			"confidenceScore": 60,
		}
	case "market_validation":
		obj = map[string]any{
			"marketSize": map[string]any{
				"tam": "fake TAM",
				"sam": "fake SAM",
				"som": "fake SOM",
			},
			"targetAudience": map[string]any{
				"primarySegment":      "fake segment",
				"secondarySegments":   []string{},
				"painPoints":          []string{"fake pain point"},
				"willingnessToPay":    "moderate",
				"acquisitionChannels": []string{"content marketing"},
			},
			"riskAssessment": map[string]any{
				"marketRisks":      []string{"fake market risk"},
				"technicalRisks":   []string{},
				"financialRisks":   []string{},
				"competitiveRisks": []string{},
			},
			"validationScore": 60,
		}
	case "feature_generation":
		obj = map[string]any{
			"mvpFeatures": []any{map[string]any{
				"name":           "Fake Core Feature",
				"description":    "fake description",
				"userStory":      "As a user, I want the fake core feature.",
				"priority":       9,
				"effort":         "M",
				"dependencies":   []string{},
				"successMetrics": []string{"activation"},
			}},
			"growthFeatures":   []any{},
			"advancedFeatures": []any{},
			"roadmap": map[string]any{
				"phase1": []string{"Fake Core Feature"},
				"phase2": []string{},
				"phase3": []string{},
			},
		}
	case "tech_stack":
		obj = map[string]any{
			"frontend":       fakeComponent("React"),
			"backend":        fakeComponent("Node.js"),
			"database":       fakeComponent("PostgreSQL"),
			"infrastructure": fakeComponent("AWS"),
			"thirdParty":     fakeComponent("Stripe"),
			"costEstimate": map[string]any{
				"development": "fake development cost",
				"monthly":     "fake monthly cost",
				"scaling":     "fake scaling cost",
			},
		}
	default:
		obj = map[string]any{}
	}
	b, _ := json.Marshal(obj)
	return Completion{
		Content:          string(b),
		CostUSD:          0.001,
		TokensUsed:       100,
		ProcessingTimeMs: 1,
	}, nil
}

func fakeComponent(primary string) map[string]any {
	return map[string]any{
		"primary":      primary,
		"alternatives": []string{"fake alternative"},
		"reasoning":    "fake reasoning",
		"pros":         []string{"fake pro"},
		"cons":         []string{"fake con"},
	}
}
