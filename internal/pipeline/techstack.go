package pipeline

import (
	"planforge/internal/types/plan"
	"planforge/internal/util/jsonutil"
)

var stageTechStack = stageConfig{
	name:        "tech_stack",
	system:      "You are a technical-architecture expert. Recommend pragmatic technology stacks for early-stage SaaS products, with honest trade-offs. Respond with a single JSON object and nothing else.",
	temperature: 0.3,
	maxTokens:   1800,
}

type componentWire struct {
	Primary      *string  `json:"primary"`
	Alternatives []string `json:"alternatives"`
	Reasoning    *string  `json:"reasoning"`
	Pros         []string `json:"pros"`
	Cons         []string `json:"cons"`
}

type techStackWire struct {
	Frontend       *componentWire `json:"frontend"`
	Backend        *componentWire `json:"backend"`
	Database       *componentWire `json:"database"`
	Infrastructure *componentWire `json:"infrastructure"`
	ThirdParty     *componentWire `json:"thirdParty"`
	CostEstimate   *struct {
		Development *string `json:"development"`
		Monthly     *string `json:"monthly"`
		Scaling     *string `json:"scaling"`
	} `json:"costEstimate"`
}

func fallbackTechStack() plan.TechStack {
	return plan.TechStack{
		Frontend: plan.StackComponent{
			Primary:      "React",
			Alternatives: []string{"Vue.js", "Svelte"},
			Reasoning:    "Largest ecosystem and hiring pool for SaaS frontends.",
			Pros:         []string{"Mature ecosystem", "Wide component availability"},
			Cons:         []string{"Fast-moving tooling"},
		},
		Backend: plan.StackComponent{
			Primary:      "Node.js",
			Alternatives: []string{"Python", "Go"},
			Reasoning:    "Shares a language with the frontend and has broad library coverage.",
			Pros:         []string{"Single-language stack", "Large package ecosystem"},
			Cons:         []string{"CPU-bound workloads need care"},
		},
		Database: plan.StackComponent{
			Primary:      "PostgreSQL",
			Alternatives: []string{"MySQL", "MongoDB"},
			Reasoning:    "Reliable general-purpose default with strong JSON support.",
			Pros:         []string{"ACID guarantees", "Rich feature set"},
			Cons:         []string{"Operational overhead at large scale"},
		},
		Infrastructure: plan.StackComponent{
			Primary:      "AWS",
			Alternatives: []string{"Google Cloud", "Azure"},
			Reasoning:    "Broadest managed-service coverage for a growing SaaS.",
			Pros:         []string{"Managed services for every tier"},
			Cons:         []string{"Cost visibility requires discipline"},
		},
		ThirdParty: plan.StackComponent{
			Primary:      "Stripe",
			Alternatives: []string{"Paddle"},
			Reasoning:    "De-facto standard for subscription billing.",
			Pros:         []string{"Excellent API and documentation"},
			Cons:         []string{"Transaction fees"},
		},
		CostEstimate: plan.CostEstimate{
			Development: "$50,000 - $100,000",
			Monthly:     "$500 - $2,000",
			Scaling:     "Grows with usage",
		},
	}
}

func parseTechStack(raw string) (plan.TechStack, bool) {
	var wire techStackWire
	if err := jsonutil.UnmarshalFlex([]byte(raw), &wire); err != nil {
		return fallbackTechStack(), true
	}

	fb := fallbackTechStack()
	out := plan.TechStack{
		Frontend:       mapComponent(wire.Frontend, fb.Frontend),
		Backend:        mapComponent(wire.Backend, fb.Backend),
		Database:       mapComponent(wire.Database, fb.Database),
		Infrastructure: mapComponent(wire.Infrastructure, fb.Infrastructure),
		ThirdParty:     mapComponent(wire.ThirdParty, fb.ThirdParty),
		CostEstimate:   fb.CostEstimate,
	}
	if ce := wire.CostEstimate; ce != nil {
		out.CostEstimate = plan.CostEstimate{
			Development: strOr(ce.Development, fb.CostEstimate.Development),
			Monthly:     strOr(ce.Monthly, fb.CostEstimate.Monthly),
			Scaling:     strOr(ce.Scaling, fb.CostEstimate.Scaling),
		}
	}
	return out, false
}

func mapComponent(w *componentWire, fb plan.StackComponent) plan.StackComponent {
	if w == nil {
		return fb
	}
	return plan.StackComponent{
		Primary:      strOr(w.Primary, fb.Primary),
		Alternatives: listOrEmpty(w.Alternatives),
		Reasoning:    strOr(w.Reasoning, ""),
		Pros:         listOrEmpty(w.Pros),
		Cons:         listOrEmpty(w.Cons),
	}
}
