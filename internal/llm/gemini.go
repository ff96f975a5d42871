package llm

import (
	"context"
	"time"

	genai "google.golang.org/genai"
)

// modelPricing is USD per one million tokens.
type modelPricing struct {
	inputPerM  float64
	outputPerM float64
}

var geminiPricing = map[string]modelPricing{
	"gemini-2.0-flash": {inputPerM: 0.10, outputPerM: 0.40},
	"gemini-2.5-flash": {inputPerM: 0.30, outputPerM: 2.50},
	"gemini-2.5-pro":   {inputPerM: 1.25, outputPerM: 10.00},
}

// defaultGeminiPricing is applied to unknown model names so cost totals stay
// populated rather than silently zero.
var defaultGeminiPricing = modelPricing{inputPerM: 0.30, outputPerM: 2.50}

// GeminiClient is a thin wrapper around the official genai client.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

func NewGeminiClient(ctx context.Context, model string) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{cli: cli, model: model}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }
func (g *GeminiClient) Close() error { return nil }

// Complete issues one generation request with the given sampling parameters
// and returns the text plus usage-derived cost. Transient provider failures
// are retried with exponential backoff before the error propagates.
func (g *GeminiClient) Complete(ctx context.Context, prompt string, opts Options) (Completion, error) {
	cfg := &genai.GenerateContentConfig{}
	if opts.SystemMessage != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: opts.SystemMessage}}}
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(opts.MaxTokens)
	}
	temp := float32(opts.Temperature)
	cfg.Temperature = &temp

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		resp, err := g.cli.Models.GenerateContent(ctx, g.model,
			[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
			cfg,
		)
		if err != nil {
			lastErr = err
		} else if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			lastErr = ErrEmptyResponse
		} else {
			return Completion{
				Content:          resp.Candidates[0].Content.Parts[0].Text,
				CostUSD:          g.cost(resp.UsageMetadata),
				TokensUsed:       totalTokens(resp.UsageMetadata),
				ProcessingTimeMs: time.Since(start).Milliseconds(),
			}, nil
		}
		select {
		case <-ctx.Done():
			return Completion{}, ctx.Err()
		case <-time.After(time.Duration(300*(1<<attempt)) * time.Millisecond):
		}
	}
	return Completion{}, lastErr
}

func (g *GeminiClient) cost(usage *genai.GenerateContentResponseUsageMetadata) float64 {
	if usage == nil {
		return 0
	}
	p, ok := geminiPricing[g.model]
	if !ok {
		p = defaultGeminiPricing
	}
	in := float64(usage.PromptTokenCount)
	out := float64(usage.CandidatesTokenCount)
	return (in*p.inputPerM + out*p.outputPerM) / 1e6
}

func totalTokens(usage *genai.GenerateContentResponseUsageMetadata) int {
	if usage == nil {
		return 0
	}
	if usage.TotalTokenCount > 0 {
		return int(usage.TotalTokenCount)
	}
	return int(usage.PromptTokenCount + usage.CandidatesTokenCount)
}
