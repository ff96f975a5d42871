// Package pipeline runs the four-stage idea analysis and persists the
// resulting plan. Stages are strictly sequential; each later stage receives
// an excerpt of an earlier stage's raw output as context.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/google/uuid"

	"planforge/internal/activity"
	"planforge/internal/artifact"
	"planforge/internal/llm"
	"planforge/internal/repository/feature"
	"planforge/internal/repository/idea"
	"planforge/internal/repository/techstack"
	"planforge/internal/repository/validation"
	"planforge/internal/types/plan"
)

// ErrInvalidProjectID rejects a submission before any model call is made.
var ErrInvalidProjectID = errors.New("pipeline: invalid project id")

var projectIDPattern = regexp.MustCompile(`^[0-9a-f]{24}$`)

// Step names, in run order. StepsCompleted in the returned metrics always
// lists exactly these seven on success.
const (
	StepIdeaSaved         = "idea_saved"
	StepBusinessAnalysis  = "business_analysis"
	StepMarketValidation  = "market_validation"
	StepFeatureGeneration = "feature_generation"
	StepTechStack         = "tech_stack_recommendation"
	StepResultsParsed     = "results_parsed"
	StepResultsSaved      = "results_saved"
)

// Config wires a Pipeline. LLM and the four stores are required; Artifacts,
// Activity and OnEvent are optional and failures on them never abort a run.
type Config struct {
	LLM         llm.Client
	Ideas       idea.Store
	Validations validation.Store
	Features    feature.Store
	TechStacks  techstack.Store

	Artifacts artifact.Store
	Activity  activity.Recorder

	// OnEvent is invoked after each completed step, on the calling
	// goroutine. Keep it fast.
	OnEvent func(projectID, step string)

	// NewID overrides record id generation. Defaults to uuid.NewString.
	NewID func() string
}

type Pipeline struct {
	cfg   Config
	locks *projectLocks
}

func New(cfg Config) (*Pipeline, error) {
	if cfg.LLM == nil {
		return nil, errors.New("pipeline: nil LLM client")
	}
	if cfg.Ideas == nil || cfg.Validations == nil || cfg.Features == nil || cfg.TechStacks == nil {
		return nil, errors.New("pipeline: all four stores are required")
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &Pipeline{cfg: cfg, locks: newProjectLocks()}, nil
}

// stageOutcome carries one stage's raw text and parse result through the run.
type stageOutcome struct {
	raw          string
	usedFallback bool
}

// ProcessIdea runs the full pipeline for one submission. Runs for the same
// project are serialized; a stage error aborts the run before any analysis
// record is written.
func (p *Pipeline) ProcessIdea(ctx context.Context, req plan.IdeaRequest) (plan.Result, error) {
	if !projectIDPattern.MatchString(req.ProjectID) {
		return plan.Result{}, fmt.Errorf("%w: %q", ErrInvalidProjectID, req.ProjectID)
	}

	unlock := p.locks.lock(req.ProjectID)
	defer unlock()

	start := time.Now()
	runID := p.cfg.NewID()
	metrics := plan.Metrics{StepsCompleted: make([]string, 0, 7)}
	step := func(name string) {
		metrics.StepsCompleted = append(metrics.StepsCompleted, name)
		if p.cfg.OnEvent != nil {
			p.cfg.OnEvent(req.ProjectID, name)
		}
	}

	rec, err := p.upsertIdea(ctx, req)
	if err != nil {
		return plan.Result{}, fmt.Errorf("idea processing failed saving idea: %w", err)
	}
	step(StepIdeaSaved)

	business, bOut, err := p.runBusiness(ctx, runID, req, &metrics)
	if err != nil {
		return plan.Result{}, err
	}
	step(StepBusinessAnalysis)

	market, _, err := p.runMarket(ctx, runID, req, bOut.raw, &metrics)
	if err != nil {
		return plan.Result{}, err
	}
	step(StepMarketValidation)

	features, fOut, err := p.runFeatures(ctx, runID, req, bOut.raw, &metrics)
	if err != nil {
		return plan.Result{}, err
	}
	step(StepFeatureGeneration)

	stack, _, err := p.runTechStack(ctx, runID, req, fOut.raw, &metrics)
	if err != nil {
		return plan.Result{}, err
	}
	step(StepTechStack)
	step(StepResultsParsed)

	if err := p.persist(ctx, rec, business, market, features, stack); err != nil {
		return plan.Result{}, fmt.Errorf("idea processing failed saving results: %w", err)
	}
	step(StepResultsSaved)

	metrics.TotalTimeMs = time.Since(start).Milliseconds()
	metrics.ConfidenceScore = OverallConfidence(business.ConfidenceScore, market.ValidationScore)

	p.recordRun(ctx, req.ProjectID, rec.ID, metrics)

	return plan.Result{
		IdeaID:           rec.ID,
		BusinessAnalysis: business,
		MarketValidation: market,
		Features:         features,
		TechStack:        stack,
		Metrics:          metrics,
	}, nil
}

// upsertIdea saves the submission, reusing the existing record id when the
// project already has one. Resubmitting an idea updates in place.
func (p *Pipeline) upsertIdea(ctx context.Context, req plan.IdeaRequest) (idea.Record, error) {
	now := time.Now().UTC()
	rec, ok, err := p.cfg.Ideas.FindByProject(ctx, req.ProjectID)
	if err != nil {
		return idea.Record{}, err
	}
	if !ok {
		rec = idea.Record{ID: p.cfg.NewID(), ProjectID: req.ProjectID, CreatedAt: now}
	}
	rec.Description = req.Description
	rec.TargetAudience = req.TargetAudience
	rec.ProblemStatement = req.ProblemStatement
	rec.DesiredFeatures = listOrEmpty(req.DesiredFeatures)
	rec.TechnicalPreferences = listOrEmpty(req.TechnicalPreferences)
	rec.UpdatedAt = now
	if err := p.cfg.Ideas.Put(ctx, rec); err != nil {
		return idea.Record{}, err
	}
	return rec, nil
}

// complete performs one model call for a stage, accumulating cost and token
// usage into the run metrics and archiving the raw output. Usage counts even
// when the output later fails to parse.
func (p *Pipeline) complete(ctx context.Context, runID string, stage stageConfig, prompt string, metrics *plan.Metrics) (string, error) {
	ctx = llm.WithStage(ctx, stage.name)
	res, err := p.cfg.LLM.Complete(ctx, prompt, llm.Options{
		SystemMessage: stage.system,
		MaxTokens:     stage.maxTokens,
		Temperature:   stage.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("idea processing failed at %s: %w", stage.name, err)
	}
	metrics.TotalCostUSD += res.CostUSD
	metrics.TotalTokens += res.TokensUsed
	p.archive(ctx, runID, "stages/"+stage.name+".json", []byte(res.Content))
	return res.Content, nil
}

func (p *Pipeline) runBusiness(ctx context.Context, runID string, req plan.IdeaRequest, metrics *plan.Metrics) (plan.BusinessAnalysis, stageOutcome, error) {
	raw, err := p.complete(ctx, runID, stageBusiness, businessPrompt(req), metrics)
	if err != nil {
		return plan.BusinessAnalysis{}, stageOutcome{}, err
	}
	out, fb := parseBusinessAnalysis(raw)
	p.logFallback(stageBusiness.name, fb)
	return out, stageOutcome{raw: raw, usedFallback: fb}, nil
}

func (p *Pipeline) runMarket(ctx context.Context, runID string, req plan.IdeaRequest, businessRaw string, metrics *plan.Metrics) (plan.MarketValidation, stageOutcome, error) {
	raw, err := p.complete(ctx, runID, stageMarket, marketPrompt(req, businessRaw), metrics)
	if err != nil {
		return plan.MarketValidation{}, stageOutcome{}, err
	}
	out, fb := parseMarketValidation(raw)
	p.logFallback(stageMarket.name, fb)
	return out, stageOutcome{raw: raw, usedFallback: fb}, nil
}

func (p *Pipeline) runFeatures(ctx context.Context, runID string, req plan.IdeaRequest, businessRaw string, metrics *plan.Metrics) (plan.FeatureGeneration, stageOutcome, error) {
	raw, err := p.complete(ctx, runID, stageFeatures, featuresPrompt(req, businessRaw), metrics)
	if err != nil {
		return plan.FeatureGeneration{}, stageOutcome{}, err
	}
	out, fb := parseFeatureGeneration(raw)
	p.logFallback(stageFeatures.name, fb)
	return out, stageOutcome{raw: raw, usedFallback: fb}, nil
}

func (p *Pipeline) runTechStack(ctx context.Context, runID string, req plan.IdeaRequest, featureRaw string, metrics *plan.Metrics) (plan.TechStack, stageOutcome, error) {
	raw, err := p.complete(ctx, runID, stageTechStack, techStackPrompt(req, featureRaw), metrics)
	if err != nil {
		return plan.TechStack{}, stageOutcome{}, err
	}
	out, fb := parseTechStack(raw)
	p.logFallback(stageTechStack.name, fb)
	return out, stageOutcome{raw: raw, usedFallback: fb}, nil
}

// persist writes the four analysis records. The idea record is re-read by id
// first so a record dropped mid-run surfaces as an error instead of a plan
// attached to a dangling idea.
func (p *Pipeline) persist(ctx context.Context, rec idea.Record, business plan.BusinessAnalysis, market plan.MarketValidation, features plan.FeatureGeneration, stack plan.TechStack) error {
	fresh, ok, err := p.cfg.Ideas.FindByID(ctx, rec.ID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("idea record %s disappeared during run", rec.ID)
	}

	now := time.Now().UTC()
	if err := p.cfg.Validations.Upsert(ctx, toValidationRecord(fresh.ID, business, market, now)); err != nil {
		return err
	}
	featRecs := toFeatureRecords(fresh.ProjectID, features, p.cfg.NewID, now)
	if err := p.cfg.Features.ReplaceForProject(ctx, fresh.ProjectID, featRecs); err != nil {
		return err
	}
	return p.cfg.TechStacks.Upsert(ctx, toTechStackRecord(fresh.ProjectID, stack, now))
}

func (p *Pipeline) archive(ctx context.Context, runID, path string, content []byte) {
	if p.cfg.Artifacts == nil {
		return
	}
	if err := p.cfg.Artifacts.Put(ctx, runID, path, content); err != nil {
		log.Printf("pipeline: archive %s/%s: %v", runID, path, err)
	}
}

func (p *Pipeline) recordRun(ctx context.Context, projectID, ideaID string, m plan.Metrics) {
	if p.cfg.Activity == nil {
		return
	}
	ev := activity.RunEvent{
		ProjectID:      projectID,
		IdeaID:         ideaID,
		StepsCompleted: m.StepsCompleted,
		CostUSD:        m.TotalCostUSD,
		Tokens:         m.TotalTokens,
		DurationMs:     m.TotalTimeMs,
	}
	if err := p.cfg.Activity.RecordRun(ctx, ev); err != nil {
		log.Printf("pipeline: record run for project %s: %v", projectID, err)
	}
}

func (p *Pipeline) logFallback(stage string, used bool) {
	if used {
		log.Printf("pipeline: %s output unparseable, substituted fallback result", stage)
	}
}
