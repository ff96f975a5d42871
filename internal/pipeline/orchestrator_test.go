package pipeline

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"planforge/internal/activity"
	"planforge/internal/artifact"
	"planforge/internal/llm"
	"planforge/internal/repository/feature"
	"planforge/internal/repository/idea"
	"planforge/internal/repository/techstack"
	"planforge/internal/repository/validation"
	"planforge/internal/types/plan"
)

const testProjectID = "64b7f0a1c2d3e4f5a6b7c8d9"

// stageScript answers each stage from a canned map and counts calls.
type stageScript struct {
	responses map[string]string
	failAt    string
	calls     []string
}

func (s *stageScript) Name() string { return "script" }
func (s *stageScript) Close() error { return nil }

func (s *stageScript) Complete(ctx context.Context, prompt string, opts llm.Options) (llm.Completion, error) {
	stage := llm.StageFrom(ctx)
	s.calls = append(s.calls, stage)
	if stage == s.failAt {
		return llm.Completion{}, errors.New("scripted provider failure")
	}
	return llm.Completion{
		Content:    s.responses[stage],
		CostUSD:    0.002,
		TokensUsed: 150,
	}, nil
}

type testEnv struct {
	pipe        *Pipeline
	script      *stageScript
	ideas       *idea.MemoryStore
	validations *validation.MemoryStore
	features    *feature.MemoryStore
	techstacks  *techstack.MemoryStore
	artifacts   *artifact.MemoryStore
	activity    *activity.MemoryRecorder
}

func newTestEnv(t *testing.T, script *stageScript) *testEnv {
	t.Helper()
	env := &testEnv{
		script:      script,
		ideas:       idea.NewMemoryStore(),
		validations: validation.NewMemoryStore(),
		features:    feature.NewMemoryStore(),
		techstacks:  techstack.NewMemoryStore(),
		artifacts:   artifact.NewMemoryStore(),
		activity:    activity.NewMemoryRecorder(),
	}
	seq := 0
	pipe, err := New(Config{
		LLM:         script,
		Ideas:       env.ideas,
		Validations: env.validations,
		Features:    env.features,
		TechStacks:  env.techstacks,
		Artifacts:   env.artifacts,
		Activity:    env.activity,
		NewID:       func() string { seq++; return fmt.Sprintf("test-id-%d", seq) },
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	env.pipe = pipe
	return env
}

func goodScript() *stageScript {
	return &stageScript{responses: map[string]string{
		"business_analysis": `{
			"businessModelType": "B2B",
			"revenueModel": "Subscription",
			"viabilityScore": 75,
			"scalabilityScore": 70,
			"competitiveLandscape": {"competitionLevel": "Medium", "marketSaturation": 60, "differentiationPoints": ["vertical focus"]},
			"confidenceScore": 88
		}`,
		"market_validation": `{
			"marketSize": {"tam": "$12B", "sam": "$900M", "som": "$45M"},
			"targetAudience": {"primarySegment": "Small accounting firms", "secondarySegments": [], "painPoints": ["lost emails"], "willingnessToPay": "high", "acquisitionChannels": ["partner referrals"]},
			"riskAssessment": {"marketRisks": ["niche size"], "technicalRisks": [], "financialRisks": [], "competitiveRisks": []},
			"validationScore": 82
		}`,
		"feature_generation": `{
			"mvpFeatures": [
				{"name": "Shared inbox", "description": "One inbox per client", "userStory": "As a partner, I see all client mail.", "priority": 10, "effort": "L", "dependencies": [], "successMetrics": ["daily active partners"]},
				{"name": "Audit trail", "description": "Immutable history", "userStory": "As a reviewer, I can trace every reply.", "priority": 8, "effort": "M", "dependencies": ["Shared inbox"], "successMetrics": []}
			],
			"growthFeatures": [{"name": "Templates", "priority": 5, "effort": "S"}],
			"advancedFeatures": [],
			"roadmap": {"phase1": ["Shared inbox"], "phase2": ["Templates"], "phase3": []}
		}`,
		"tech_stack": `{
			"frontend": {"primary": "React", "alternatives": ["Vue.js"], "reasoning": "team knows it", "pros": [], "cons": []},
			"backend": {"primary": "Node.js", "alternatives": ["Go"], "reasoning": "shared language", "pros": [], "cons": []},
			"database": {"primary": "PostgreSQL", "alternatives": [], "reasoning": "default", "pros": [], "cons": []},
			"infrastructure": {"primary": "AWS", "alternatives": [], "reasoning": "managed services", "pros": [], "cons": []},
			"thirdParty": {"primary": "Stripe", "alternatives": [], "reasoning": "billing", "pros": [], "cons": []},
			"costEstimate": {"development": "$80,000", "monthly": "$1,200", "scaling": "linear with seats"}
		}`,
	}}
}

func testRequest() plan.IdeaRequest {
	return plan.IdeaRequest{
		ProjectID:        testProjectID,
		Description:      "Shared inbox for small accounting firms",
		TargetAudience:   "Accounting firms with 2-20 staff",
		ProblemStatement: "Client email gets lost across partners",
		DesiredFeatures:  []string{"shared inbox"},
	}
}

func TestProcessIdeaFullRun(t *testing.T) {
	env := newTestEnv(t, goodScript())
	res, err := env.pipe.ProcessIdea(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("ProcessIdea() error: %v", err)
	}

	wantSteps := []string{
		"idea_saved", "business_analysis", "market_validation",
		"feature_generation", "tech_stack_recommendation",
		"results_parsed", "results_saved",
	}
	if !reflect.DeepEqual(res.Metrics.StepsCompleted, wantSteps) {
		t.Errorf("StepsCompleted = %v, want %v", res.Metrics.StepsCompleted, wantSteps)
	}
	if res.Metrics.ConfidenceScore != 85 {
		t.Errorf("ConfidenceScore = %d, want 85", res.Metrics.ConfidenceScore)
	}
	if res.Metrics.TotalTokens != 600 {
		t.Errorf("TotalTokens = %d, want 600", res.Metrics.TotalTokens)
	}
	if got, want := res.Metrics.TotalCostUSD, 0.008; got < want-1e-9 || got > want+1e-9 {
		t.Errorf("TotalCostUSD = %v, want %v", got, want)
	}
	if res.MarketValidation.MarketSize.TAM != "$12B" {
		t.Errorf("TAM = %q, want $12B", res.MarketValidation.MarketSize.TAM)
	}

	// Persistence side effects.
	rec, ok, _ := env.ideas.FindByID(context.Background(), res.IdeaID)
	if !ok {
		t.Fatal("idea record not persisted")
	}
	if rec.ProjectID != testProjectID {
		t.Errorf("idea ProjectID = %q, want %q", rec.ProjectID, testProjectID)
	}
	vrec, ok, _ := env.validations.FindByIdea(context.Background(), res.IdeaID)
	if !ok {
		t.Fatal("validation record not persisted")
	}
	if vrec.MarketPotential != 82 {
		t.Errorf("MarketPotential = %d, want 82", vrec.MarketPotential)
	}
	feats, _ := env.features.ListByProject(context.Background(), testProjectID)
	if len(feats) != 3 {
		t.Fatalf("persisted features = %d, want 3", len(feats))
	}
	mvp := 0
	for _, f := range feats {
		if f.Category == feature.CategoryMVP {
			mvp++
		}
	}
	if mvp != 2 {
		t.Errorf("mvp features = %d, want 2", mvp)
	}
	srec, ok, _ := env.techstacks.FindByProject(context.Background(), testProjectID)
	if !ok {
		t.Fatal("tech stack record not persisted")
	}
	if srec.Backend[0].Name != "Node.js" {
		t.Errorf("Backend option = %q, want Node.js", srec.Backend[0].Name)
	}

	// One activity event per completed run.
	events := env.activity.Events()
	if len(events) != 1 {
		t.Fatalf("activity events = %d, want 1", len(events))
	}
	if events[0].ProjectID != testProjectID || events[0].Tokens != 600 {
		t.Errorf("activity event = %+v", events[0])
	}
}

func TestProcessIdeaRejectsInvalidProjectID(t *testing.T) {
	script := goodScript()
	env := newTestEnv(t, script)

	for _, id := range []string{"", "not-hex", "64B7F0A1C2D3E4F5A6B7C8D9", "64b7f0a1c2d3e4f5a6b7c8d"} {
		_, err := env.pipe.ProcessIdea(context.Background(), plan.IdeaRequest{ProjectID: id})
		if !errors.Is(err, ErrInvalidProjectID) {
			t.Errorf("ProcessIdea(%q) error = %v, want ErrInvalidProjectID", id, err)
		}
	}
	if len(script.calls) != 0 {
		t.Errorf("model called %d times for invalid ids, want 0", len(script.calls))
	}
	if env.ideas.Len() != 0 {
		t.Errorf("ideas persisted = %d, want 0", env.ideas.Len())
	}
}

func TestProcessIdeaReusesIdeaRecord(t *testing.T) {
	env := newTestEnv(t, goodScript())
	ctx := context.Background()

	first, err := env.pipe.ProcessIdea(ctx, testRequest())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	req := testRequest()
	req.Description = "Shared inbox, now with SLAs"
	second, err := env.pipe.ProcessIdea(ctx, req)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if first.IdeaID != second.IdeaID {
		t.Errorf("idea id changed across runs: %q then %q", first.IdeaID, second.IdeaID)
	}
	if env.ideas.Len() != 1 {
		t.Errorf("idea records = %d, want 1", env.ideas.Len())
	}
	rec, _, _ := env.ideas.FindByID(ctx, second.IdeaID)
	if rec.Description != req.Description {
		t.Errorf("Description = %q, want the resubmitted text", rec.Description)
	}
}

func TestProcessIdeaReplacesFeatureSet(t *testing.T) {
	env := newTestEnv(t, goodScript())
	ctx := context.Background()

	if _, err := env.pipe.ProcessIdea(ctx, testRequest()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	env.script.responses["feature_generation"] = `{
		"mvpFeatures": [{"name": "Only feature", "priority": 9, "effort": "M"}],
		"growthFeatures": [], "advancedFeatures": [],
		"roadmap": {"phase1": ["Only feature"], "phase2": [], "phase3": []}
	}`
	if _, err := env.pipe.ProcessIdea(ctx, testRequest()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	feats, _ := env.features.ListByProject(ctx, testProjectID)
	if len(feats) != 1 {
		t.Fatalf("features after second run = %d, want 1", len(feats))
	}
	if feats[0].Name != "Only feature" || feats[0].Priority != feature.PriorityCritical {
		t.Errorf("surviving feature = %+v", feats[0])
	}
}

func TestProcessIdeaGarbageOutputPersistsFallbacks(t *testing.T) {
	script := &stageScript{responses: map[string]string{
		"business_analysis":  "no json here",
		"market_validation":  "still no json",
		"feature_generation": "nothing",
		"tech_stack":         "nope",
	}}
	env := newTestEnv(t, script)
	res, err := env.pipe.ProcessIdea(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("ProcessIdea() error: %v", err)
	}

	if res.BusinessAnalysis.BusinessModelType != "B2B" || res.BusinessAnalysis.ViabilityScore != 50 {
		t.Errorf("business fallback = %+v", res.BusinessAnalysis)
	}
	if res.MarketValidation.ValidationScore != 50 {
		t.Errorf("ValidationScore = %d, want 50", res.MarketValidation.ValidationScore)
	}
	if res.Metrics.ConfidenceScore != 50 {
		t.Errorf("ConfidenceScore = %d, want 50", res.Metrics.ConfidenceScore)
	}
	// Usage still counts even though every stage fell back.
	if res.Metrics.TotalTokens != 600 {
		t.Errorf("TotalTokens = %d, want 600", res.Metrics.TotalTokens)
	}

	feats, _ := env.features.ListByProject(context.Background(), testProjectID)
	if len(feats) != 1 || feats[0].Name != "Core Functionality" {
		t.Errorf("fallback features = %+v, want single Core Functionality", feats)
	}
	srec, ok, _ := env.techstacks.FindByProject(context.Background(), testProjectID)
	if !ok || srec.Frontend[0].Name != "React" {
		t.Errorf("fallback stack = %+v, want React frontend", srec)
	}
}

func TestProcessIdeaStageErrorAbortsRun(t *testing.T) {
	script := goodScript()
	script.failAt = "market_validation"
	env := newTestEnv(t, script)

	res, err := env.pipe.ProcessIdea(context.Background(), testRequest())
	if err == nil {
		t.Fatal("ProcessIdea() succeeded, want stage error")
	}
	if !strings.Contains(err.Error(), "market_validation") {
		t.Errorf("error = %v, want stage name in message", err)
	}
	if res.IdeaID != "" {
		t.Errorf("result should be zero on failure, got %+v", res)
	}

	// Idea upsert happens before the stages; analysis records must not.
	if env.ideas.Len() != 1 {
		t.Errorf("ideas persisted = %d, want 1", env.ideas.Len())
	}
	feats, _ := env.features.ListByProject(context.Background(), testProjectID)
	if len(feats) != 0 {
		t.Errorf("features persisted = %d, want 0", len(feats))
	}
	// The failed stage is the last call; tech_stack is never reached.
	want := []string{"business_analysis", "market_validation"}
	if !reflect.DeepEqual(script.calls, want) {
		t.Errorf("stage calls = %v, want %v", script.calls, want)
	}
}

func TestProcessIdeaEmitsStepEvents(t *testing.T) {
	env := newTestEnv(t, goodScript())
	var steps []string
	// Pipeline is rebuilt to attach the observer.
	seq := 0
	pipe, err := New(Config{
		LLM:         env.script,
		Ideas:       env.ideas,
		Validations: env.validations,
		Features:    env.features,
		TechStacks:  env.techstacks,
		OnEvent: func(projectID, step string) {
			if projectID != testProjectID {
				t.Errorf("event project = %q, want %q", projectID, testProjectID)
			}
			steps = append(steps, step)
		},
		NewID: func() string { seq++; return fmt.Sprintf("ev-id-%d", seq) },
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	res, err := pipe.ProcessIdea(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("ProcessIdea() error: %v", err)
	}
	if !reflect.DeepEqual(steps, res.Metrics.StepsCompleted) {
		t.Errorf("emitted steps %v != metrics steps %v", steps, res.Metrics.StepsCompleted)
	}
}

func TestProcessIdeaArchivesStageOutputs(t *testing.T) {
	env := newTestEnv(t, goodScript())
	if _, err := env.pipe.ProcessIdea(context.Background(), testRequest()); err != nil {
		t.Fatalf("ProcessIdea() error: %v", err)
	}
	// The run id is the first generated id.
	paths, err := env.artifacts.List(context.Background(), "test-id-1")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(paths) != 4 {
		t.Fatalf("archived artifacts = %v, want 4 stage files", paths)
	}
	for _, p := range paths {
		if !strings.HasPrefix(p, "stages/") || !strings.HasSuffix(p, ".json") {
			t.Errorf("artifact path %q, want stages/<stage>.json", p)
		}
	}
}
