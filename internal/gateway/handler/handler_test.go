package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"planforge/internal/llm"
	"planforge/internal/pipeline"
	"planforge/internal/repository/feature"
	"planforge/internal/repository/idea"
	"planforge/internal/repository/techstack"
	"planforge/internal/repository/validation"
	"planforge/internal/types/plan"
)

const testProjectID = "64b7f0a1c2d3e4f5a6b7c8d9"

type handlerStores struct {
	ideas       *idea.MemoryStore
	validations *validation.MemoryStore
	features    *feature.MemoryStore
	techstacks  *techstack.MemoryStore
}

func newHandlerStores() handlerStores {
	return handlerStores{
		ideas:       idea.NewMemoryStore(),
		validations: validation.NewMemoryStore(),
		features:    feature.NewMemoryStore(),
		techstacks:  techstack.NewMemoryStore(),
	}
}

func newTestPipeline(t *testing.T, s handlerStores) *pipeline.Pipeline {
	t.Helper()
	pipe, err := pipeline.New(pipeline.Config{
		LLM:         llm.NewFakeClient(),
		Ideas:       s.ideas,
		Validations: s.validations,
		Features:    s.features,
		TechStacks:  s.techstacks,
	})
	if err != nil {
		t.Fatalf("pipeline.New() error: %v", err)
	}
	return pipe
}

func TestHandleProcessReturnsResult(t *testing.T) {
	s := newHandlerStores()
	h := NewIdeaHandler(newTestPipeline(t, s))

	body := `{"projectId": "` + testProjectID + `", "description": "Shared inbox for accountants", "targetAudience": "small firms", "problemStatement": "email gets lost"}`
	req := httptest.NewRequest(http.MethodPost, "/api/ideas/process", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleProcess(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	var res plan.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.IdeaID == "" {
		t.Error("response missing ideaId")
	}
	if len(res.Metrics.StepsCompleted) != 7 {
		t.Errorf("StepsCompleted = %v, want 7 steps", res.Metrics.StepsCompleted)
	}
	if res.BusinessAnalysis.BusinessModelType == "" {
		t.Error("response missing business analysis")
	}
}

func TestHandleProcessRejectsBadInput(t *testing.T) {
	s := newHandlerStores()
	h := NewIdeaHandler(newTestPipeline(t, s))

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", "{"},
		{"missing description", `{"projectId": "` + testProjectID + `"}`},
		{"bad project id", `{"projectId": "nope", "description": "an idea"}`},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/api/ideas/process", strings.NewReader(tt.body))
		rec := httptest.NewRecorder()
		h.HandleProcess(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tt.name, rec.Code)
		}
	}
	if s.ideas.Len() != 0 {
		t.Errorf("ideas persisted = %d, want 0", s.ideas.Len())
	}
}

func TestHandlePlanAggregatesRecords(t *testing.T) {
	s := newHandlerStores()
	pipe := newTestPipeline(t, s)
	if _, err := pipe.ProcessIdea(context.Background(), plan.IdeaRequest{
		ProjectID:   testProjectID,
		Description: "Shared inbox for accountants",
	}); err != nil {
		t.Fatalf("seed run: %v", err)
	}

	h := NewPlanHandler(s.ideas, s.validations, s.features, s.techstacks)
	req := httptest.NewRequest(http.MethodGet, "/api/projects/"+testProjectID+"/plan", nil)
	req.SetPathValue("projectId", testProjectID)
	rec := httptest.NewRecorder()
	h.HandlePlan(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	var view planView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if view.Idea == nil || view.Idea.ProjectID != testProjectID {
		t.Errorf("Idea = %+v, want record for project", view.Idea)
	}
	if view.Validation == nil {
		t.Error("Validation section missing")
	}
	if len(view.Features) == 0 {
		t.Error("Features section empty")
	}
	if view.TechStack == nil {
		t.Error("TechStack section missing")
	}
}

func TestHandlePlanUnknownProject(t *testing.T) {
	s := newHandlerStores()
	h := NewPlanHandler(s.ideas, s.validations, s.features, s.techstacks)

	req := httptest.NewRequest(http.MethodGet, "/api/projects/"+testProjectID+"/plan", nil)
	req.SetPathValue("projectId", testProjectID)
	rec := httptest.NewRecorder()
	h.HandlePlan(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestWatchPublishDropsWhenNoSubscribers(t *testing.T) {
	h := NewWatchHandler()
	// Must not block or panic without subscribers.
	h.Publish(testProjectID, "idea_saved")
}

func TestWatchSubscriberFiltersByProject(t *testing.T) {
	h := NewWatchHandler()
	matching := &subscriber{projectID: testProjectID, send: make(chan StepEvent, 1)}
	other := &subscriber{projectID: strings.Repeat("0", 24), send: make(chan StepEvent, 1)}
	all := &subscriber{send: make(chan StepEvent, 1)}
	h.subs[matching] = struct{}{}
	h.subs[other] = struct{}{}
	h.subs[all] = struct{}{}

	h.Publish(testProjectID, "results_saved")

	select {
	case ev := <-matching.send:
		if ev.Step != "results_saved" {
			t.Errorf("Step = %q, want results_saved", ev.Step)
		}
	case <-time.After(time.Second):
		t.Fatal("matching subscriber got no event")
	}
	select {
	case <-all.send:
	case <-time.After(time.Second):
		t.Fatal("unfiltered subscriber got no event")
	}
	select {
	case ev := <-other.send:
		t.Errorf("other-project subscriber got %+v", ev)
	default:
	}
}

func TestHandleHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("body = %q, want ok status", rec.Body.String())
	}
}
