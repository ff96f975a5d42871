package pipeline

import (
	"strings"

	"planforge/internal/types/plan"
)

// notSpecified is rendered for optional list fields the submitter left empty.
const notSpecified = "Not specified"

// contextExcerptLen bounds how much of the previous stage's raw text is
// carried into the next stage's prompt.
const contextExcerptLen = 500

func writeSection(buf *strings.Builder, title, body string) {
	body = strings.TrimSpace(body)
	if body == "" {
		return
	}
	buf.WriteString("[")
	buf.WriteString(title)
	buf.WriteString("]\n")
	buf.WriteString(body)
	buf.WriteString("\n\n")
}

func formatList(items []string) string {
	if len(items) == 0 {
		return notSpecified
	}
	return strings.Join(items, ", ")
}

// excerpt returns at most n characters of s, cutting on a rune boundary.
func excerpt(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func writeIdeaSections(buf *strings.Builder, req plan.IdeaRequest) {
	writeSection(buf, "IDEA_DESCRIPTION", req.Description)
	writeSection(buf, "TARGET_AUDIENCE", req.TargetAudience)
	writeSection(buf, "PROBLEM_STATEMENT", req.ProblemStatement)
	writeSection(buf, "DESIRED_FEATURES", formatList(req.DesiredFeatures))
	writeSection(buf, "TECHNICAL_PREFERENCES", formatList(req.TechnicalPreferences))
}

func businessPrompt(req plan.IdeaRequest) string {
	var buf strings.Builder
	writeSection(&buf, "PURPOSE", "Analyze the business model of the SaaS idea below.")
	writeIdeaSections(&buf, req)
	writeSection(&buf, "OUTPUT", strings.TrimSpace(`
- businessModelType: string, one of B2B | B2C | B2B2C | Marketplace | Platform
- revenueModel: string, one of Subscription | Freemium | Usage-Based | One-Time | Hybrid
- viabilityScore: integer 0-100
- scalabilityScore: integer 0-100
- competitiveLandscape: object with competitionLevel (Low | Medium | High), marketSaturation (integer 0-100), differentiationPoints ([]string)
- confidenceScore: integer 0-100
`))
	writeSection(&buf, "OUTPUT_FORMAT", "JSON only. A single object with exactly the fields above.")
	return strings.TrimSpace(buf.String()) + "\n"
}

func marketPrompt(req plan.IdeaRequest, businessContext string) string {
	var buf strings.Builder
	writeSection(&buf, "PURPOSE", "Validate the market opportunity for the SaaS idea below.")
	writeIdeaSections(&buf, req)
	writeSection(&buf, "BUSINESS_ANALYSIS_CONTEXT", excerpt(businessContext, contextExcerptLen))
	writeSection(&buf, "OUTPUT", strings.TrimSpace(`
- marketSize: object with tam, sam, som (free-text estimates)
- targetAudience: object with primarySegment (string), secondarySegments ([]string), painPoints ([]string), willingnessToPay (string), acquisitionChannels ([]string)
- riskAssessment: object with marketRisks, technicalRisks, financialRisks, competitiveRisks (each []string)
- validationScore: integer 0-100
`))
	writeSection(&buf, "OUTPUT_FORMAT", "JSON only. A single object with exactly the fields above.")
	return strings.TrimSpace(buf.String()) + "\n"
}

func featuresPrompt(req plan.IdeaRequest, businessContext string) string {
	var buf strings.Builder
	writeSection(&buf, "PURPOSE", "Generate a tiered feature roadmap for the SaaS idea below.")
	writeIdeaSections(&buf, req)
	writeSection(&buf, "BUSINESS_ANALYSIS_CONTEXT", excerpt(businessContext, contextExcerptLen))
	writeSection(&buf, "OUTPUT", strings.TrimSpace(`
- mvpFeatures, growthFeatures, advancedFeatures: each []feature where feature is an object with
  name (string), description (string), userStory (string), priority (integer 1-10),
  effort (S | M | L | XL), dependencies ([]string), successMetrics ([]string)
- roadmap: object with phase1, phase2, phase3 (each []string of feature names)
`))
	writeSection(&buf, "OUTPUT_FORMAT", "JSON only. A single object with exactly the fields above.")
	return strings.TrimSpace(buf.String()) + "\n"
}

func techStackPrompt(req plan.IdeaRequest, featureContext string) string {
	var buf strings.Builder
	writeSection(&buf, "PURPOSE", "Recommend a technology stack for the SaaS idea below.")
	writeSection(&buf, "IDEA_DESCRIPTION", req.Description)
	writeSection(&buf, "TARGET_AUDIENCE", req.TargetAudience)
	writeSection(&buf, "TECHNICAL_PREFERENCES", formatList(req.TechnicalPreferences))
	writeSection(&buf, "FEATURE_CONTEXT", excerpt(featureContext, contextExcerptLen))
	writeSection(&buf, "OUTPUT", strings.TrimSpace(`
- frontend, backend, database, infrastructure, thirdParty: each an object with
  primary (string), alternatives ([]string), reasoning (string), pros ([]string), cons ([]string)
- costEstimate: object with development, monthly, scaling (free-text estimates)
`))
	writeSection(&buf, "OUTPUT_FORMAT", "JSON only. A single object with exactly the fields above.")
	return strings.TrimSpace(buf.String()) + "\n"
}
