package pipeline

import (
	"strings"
	"testing"

	"planforge/internal/types/plan"
)

var promptReq = plan.IdeaRequest{
	ProjectID:        "64b7f0a1c2d3e4f5a6b7c8d9",
	Description:      "Shared inbox for small accounting firms",
	TargetAudience:   "Accounting firms with 2-20 staff",
	ProblemStatement: "Client email gets lost across partners",
	DesiredFeatures:  []string{"shared inbox", "audit trail"},
}

func TestBusinessPromptRendersSections(t *testing.T) {
	got := businessPrompt(promptReq)
	for _, section := range []string{"[PURPOSE]", "[IDEA_DESCRIPTION]", "[TARGET_AUDIENCE]", "[PROBLEM_STATEMENT]", "[DESIRED_FEATURES]", "[TECHNICAL_PREFERENCES]", "[OUTPUT_FORMAT]"} {
		if !strings.Contains(got, section) {
			t.Errorf("businessPrompt missing section %s", section)
		}
	}
	if !strings.Contains(got, "shared inbox, audit trail") {
		t.Errorf("desired features not joined into prompt:\n%s", got)
	}
}

func TestEmptyListsRenderNotSpecified(t *testing.T) {
	req := promptReq
	req.DesiredFeatures = nil
	req.TechnicalPreferences = nil
	got := businessPrompt(req)
	if strings.Count(got, notSpecified) != 2 {
		t.Errorf("want %q twice in prompt, got:\n%s", notSpecified, got)
	}
}

func TestMarketPromptCarriesBusinessExcerpt(t *testing.T) {
	long := strings.Repeat("x", contextExcerptLen+200)
	got := marketPrompt(promptReq, long)
	if !strings.Contains(got, "[BUSINESS_ANALYSIS_CONTEXT]") {
		t.Fatal("marketPrompt missing business context section")
	}
	if strings.Contains(got, long) {
		t.Error("business context was not truncated")
	}
	if !strings.Contains(got, strings.Repeat("x", contextExcerptLen)) {
		t.Error("truncated business context missing from prompt")
	}
}

func TestFeaturesPromptUsesBusinessContext(t *testing.T) {
	got := featuresPrompt(promptReq, "BUSINESS-RAW")
	if !strings.Contains(got, "[BUSINESS_ANALYSIS_CONTEXT]") || !strings.Contains(got, "BUSINESS-RAW") {
		t.Errorf("featuresPrompt missing business context:\n%s", got)
	}
}

func TestTechStackPromptUsesFeatureContext(t *testing.T) {
	got := techStackPrompt(promptReq, "FEATURE-RAW")
	if !strings.Contains(got, "[FEATURE_CONTEXT]") || !strings.Contains(got, "FEATURE-RAW") {
		t.Errorf("techStackPrompt missing feature context:\n%s", got)
	}
	if strings.Contains(got, "[PROBLEM_STATEMENT]") {
		t.Error("techStackPrompt should not include the problem statement")
	}
}

func TestExcerptCutsOnRuneBoundary(t *testing.T) {
	s := strings.Repeat("é", 10)
	got := excerpt(s, 4)
	if got != strings.Repeat("é", 4) {
		t.Errorf("excerpt = %q, want 4 runes", got)
	}
}
