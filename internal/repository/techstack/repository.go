// Package techstack persists one technology-stack recommendation per project.
package techstack

import (
	"context"
	"time"
)

// Option is one weighted technology choice. Difficulty, Cost and Popularity
// come from fixed per-component heuristics, not from the analysis output.
type Option struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Pros        []string `json:"pros"`
	Cons        []string `json:"cons"`
	Difficulty  string   `json:"difficulty"`
	Cost        string   `json:"cost"`
	Popularity  int      `json:"popularity"`
}

type Rationale struct {
	Reasoning    string   `json:"reasoning"`
	Alternatives []string `json:"alternatives"`
}

type Record struct {
	ProjectID      string    `json:"projectId"`
	Frontend       []Option  `json:"frontend"`
	Backend        []Option  `json:"backend"`
	Database       []Option  `json:"database"`
	Infrastructure []Option  `json:"infrastructure"`
	ThirdParty     []Option  `json:"thirdParty"`
	Rationale      Rationale `json:"rationale"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type Store interface {
	FindByProject(ctx context.Context, projectID string) (Record, bool, error)
	Upsert(ctx context.Context, rec Record) error
}
