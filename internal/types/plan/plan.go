// Package plan holds the structured results produced by the idea-processing
// pipeline and the request/metrics envelopes around them.
package plan

// IdeaRequest is one raw idea submission. ProjectID must reference an
// existing project; the optional lists may be empty.
type IdeaRequest struct {
	ProjectID            string   `json:"projectId"`
	Description          string   `json:"description"`
	TargetAudience       string   `json:"targetAudience"`
	ProblemStatement     string   `json:"problemStatement"`
	DesiredFeatures      []string `json:"desiredFeatures,omitempty"`
	TechnicalPreferences []string `json:"technicalPreferences,omitempty"`
}

// BusinessAnalysis is the stage-1 result.
type BusinessAnalysis struct {
	BusinessModelType    string               `json:"businessModelType"`
	RevenueModel         string               `json:"revenueModel"`
	ViabilityScore       int                  `json:"viabilityScore"`
	ScalabilityScore     int                  `json:"scalabilityScore"`
	CompetitiveLandscape CompetitiveLandscape `json:"competitiveLandscape"`
	ConfidenceScore      int                  `json:"confidenceScore"`
}

type CompetitiveLandscape struct {
	CompetitionLevel      string   `json:"competitionLevel"`
	MarketSaturation      int      `json:"marketSaturation"`
	DifferentiationPoints []string `json:"differentiationPoints"`
}

// MarketValidation is the stage-2 result.
type MarketValidation struct {
	MarketSize      MarketSize       `json:"marketSize"`
	TargetAudience  AudienceAnalysis `json:"targetAudience"`
	RiskAssessment  RiskAssessment   `json:"riskAssessment"`
	ValidationScore int              `json:"validationScore"`
}

// MarketSize carries free-text TAM/SAM/SOM estimates.
type MarketSize struct {
	TAM string `json:"tam"`
	SAM string `json:"sam"`
	SOM string `json:"som"`
}

type AudienceAnalysis struct {
	PrimarySegment      string   `json:"primarySegment"`
	SecondarySegments   []string `json:"secondarySegments"`
	PainPoints          []string `json:"painPoints"`
	WillingnessToPay    string   `json:"willingnessToPay"`
	AcquisitionChannels []string `json:"acquisitionChannels"`
}

type RiskAssessment struct {
	MarketRisks      []string `json:"marketRisks"`
	TechnicalRisks   []string `json:"technicalRisks"`
	FinancialRisks   []string `json:"financialRisks"`
	CompetitiveRisks []string `json:"competitiveRisks"`
}

// FeatureGeneration is the stage-3 result.
type FeatureGeneration struct {
	MVPFeatures      []Feature `json:"mvpFeatures"`
	GrowthFeatures   []Feature `json:"growthFeatures"`
	AdvancedFeatures []Feature `json:"advancedFeatures"`
	Roadmap          Roadmap   `json:"roadmap"`
}

// Feature is one processed feature. Priority is a 1-10 integer; Effort is
// one of S, M, L, XL.
type Feature struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	UserStory      string   `json:"userStory"`
	Priority       int      `json:"priority"`
	Effort         string   `json:"effort"`
	Dependencies   []string `json:"dependencies"`
	SuccessMetrics []string `json:"successMetrics"`
}

type Roadmap struct {
	Phase1 []string `json:"phase1"`
	Phase2 []string `json:"phase2"`
	Phase3 []string `json:"phase3"`
}

// TechStack is the stage-4 result.
type TechStack struct {
	Frontend       StackComponent `json:"frontend"`
	Backend        StackComponent `json:"backend"`
	Database       StackComponent `json:"database"`
	Infrastructure StackComponent `json:"infrastructure"`
	ThirdParty     StackComponent `json:"thirdParty"`
	CostEstimate   CostEstimate   `json:"costEstimate"`
}

type StackComponent struct {
	Primary      string   `json:"primary"`
	Alternatives []string `json:"alternatives"`
	Reasoning    string   `json:"reasoning"`
	Pros         []string `json:"pros"`
	Cons         []string `json:"cons"`
}

type CostEstimate struct {
	Development string `json:"development"`
	Monthly     string `json:"monthly"`
	Scaling     string `json:"scaling"`
}

// Metrics summarizes one pipeline run. It is returned to the caller and
// never persisted.
type Metrics struct {
	TotalTimeMs     int64    `json:"totalTimeMs"`
	TotalCostUSD    float64  `json:"totalCostUSD"`
	TotalTokens     int      `json:"totalTokens"`
	StepsCompleted  []string `json:"stepsCompleted"`
	ConfidenceScore int      `json:"confidenceScore"`
}

// Result is the full structured outcome of one ProcessIdea call.
type Result struct {
	IdeaID           string            `json:"ideaId"`
	BusinessAnalysis BusinessAnalysis  `json:"businessAnalysis"`
	MarketValidation MarketValidation  `json:"marketValidation"`
	Features         FeatureGeneration `json:"features"`
	TechStack        TechStack         `json:"techStack"`
	Metrics          Metrics           `json:"processingMetrics"`
}
