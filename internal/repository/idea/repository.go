// Package idea persists raw idea submissions. At most one record exists per
// project; the upsert guard in the pipeline relies on FindByProject + Put.
package idea

import (
	"context"
	"time"
)

type Record struct {
	ID                   string    `json:"id"`
	ProjectID            string    `json:"projectId"`
	Description          string    `json:"description"`
	TargetAudience       string    `json:"targetAudience"`
	ProblemStatement     string    `json:"problemStatement"`
	DesiredFeatures      []string  `json:"desiredFeatures"`
	TechnicalPreferences []string  `json:"technicalPreferences"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

type Store interface {
	FindByID(ctx context.Context, id string) (Record, bool, error)
	FindByProject(ctx context.Context, projectID string) (Record, bool, error)
	Put(ctx context.Context, rec Record) error
}
