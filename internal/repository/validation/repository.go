// Package validation persists one market-validation record per idea.
package validation

import (
	"context"
	"time"
)

// Risk is one flattened risk entry. Severity is currently always "medium";
// see DESIGN.md for the open question around deriving it from the analysis.
type Risk struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

type Record struct {
	IdeaID                       string    `json:"ideaId"`
	MarketPotential              int       `json:"marketPotential"`
	DifferentiationOpportunities []string  `json:"differentiationOpportunities"`
	Risks                        []Risk    `json:"risks"`
	SimilarProducts              []string  `json:"similarProducts"`
	ImprovementSuggestions       []string  `json:"improvementSuggestions"`
	UpdatedAt                    time.Time `json:"updatedAt"`
}

type Store interface {
	FindByIdea(ctx context.Context, ideaID string) (Record, bool, error)
	Upsert(ctx context.Context, rec Record) error
}
