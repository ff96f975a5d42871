package llm

import (
	"context"
	"errors"
)

var ErrEmptyResponse = errors.New("llm: empty response from model")

// Options are the sampling parameters for one completion call.
type Options struct {
	SystemMessage string
	MaxTokens     int
	Temperature   float64
}

// Completion is the provider response plus usage metadata.
type Completion struct {
	Content          string
	CostUSD          float64
	TokensUsed       int
	ProcessingTimeMs int64
}

// Client is the capability boundary to the text-completion provider.
type Client interface {
	Name() string
	Complete(ctx context.Context, prompt string, opts Options) (Completion, error)
	Close() error
}
