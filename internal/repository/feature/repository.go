// Package feature persists generated feature records. A pipeline run
// replaces the full feature set for a project rather than merging into it.
package feature

import (
	"context"
	"time"
)

// Record categories.
const (
	CategoryMVP    = "mvp"
	CategoryGrowth = "growth"
	CategoryFuture = "future"
)

// Priority buckets derived from the 1-10 feature priority.
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
)

type Record struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"projectId"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	UserStory      string    `json:"userStory"`
	Category       string    `json:"category"`
	Priority       string    `json:"priority"`
	Complexity     int       `json:"complexity"`
	Effort         string    `json:"effort"`
	UserPersona    string    `json:"userPersona"`
	Dependencies   []string  `json:"dependencies"`
	SuccessMetrics []string  `json:"successMetrics"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Store interface {
	ListByProject(ctx context.Context, projectID string) ([]Record, error)
	// ReplaceForProject deletes all feature records for the project and
	// inserts the given set. Destructive overwrite, not merge.
	ReplaceForProject(ctx context.Context, projectID string, recs []Record) error
}
