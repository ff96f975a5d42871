// Package activity records pipeline run outcomes to the activity feed.
// Recording is best effort; a failed write is logged by the caller, never
// propagated.
package activity

import (
	"context"
	"time"
)

// RunEvent is published once per completed pipeline run.
type RunEvent struct {
	ProjectID      string   `json:"projectId"`
	IdeaID         string   `json:"ideaId"`
	StepsCompleted []string `json:"stepsCompleted"`
	CostUSD        float64  `json:"costUsd"`
	Tokens         int      `json:"tokens"`
	DurationMs     int64    `json:"durationMs"`
	Timestamp      int64    `json:"timestamp"`
}

type Recorder interface {
	RecordRun(ctx context.Context, ev RunEvent) error
}

func stamp(ev RunEvent) RunEvent {
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().Unix()
	}
	return ev
}
