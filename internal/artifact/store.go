// Package artifact archives raw pipeline outputs (prompts, stage responses)
// for later inspection. Archiving is best effort; the pipeline never fails
// because an artifact write failed.
package artifact

import "context"

type Store interface {
	Put(ctx context.Context, runID, path string, content []byte) error
	Get(ctx context.Context, runID, path string) ([]byte, error)
	List(ctx context.Context, runID string) ([]string, error)
}
