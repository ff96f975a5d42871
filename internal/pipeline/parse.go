package pipeline

import (
	"math"
	"strings"
)

// stageConfig pins one stage's identity and sampling parameters.
type stageConfig struct {
	name        string
	system      string
	temperature float64
	maxTokens   int
}

// defaultScore is the defensive default for missing [0,100] score fields.
const defaultScore = 50

// clampScore bounds a parsed score to [0,100]. Model output occasionally
// wanders out of range; scores must stay comparable across runs.
func clampScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	n := int(math.Round(v))
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// clampPriority bounds a feature priority to 1..10.
func clampPriority(v float64) int {
	if math.IsNaN(v) {
		return 1
	}
	n := int(math.Round(v))
	if n < 1 {
		return 1
	}
	if n > 10 {
		return 10
	}
	return n
}

func scoreOr(p *float64, def int) int {
	if p == nil {
		return def
	}
	return clampScore(*p)
}

func strOr(p *string, def string) string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return def
	}
	return strings.TrimSpace(*p)
}

func listOrEmpty(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}

// enumOr canonicalizes a parsed enum value against its member set,
// case-insensitively, falling back to def for missing or unknown values.
func enumOr(p *string, members []string, def string) string {
	if p == nil {
		return def
	}
	got := strings.TrimSpace(*p)
	for _, m := range members {
		if strings.EqualFold(got, m) {
			return m
		}
	}
	return def
}
