// Package app assembles the gateway: configuration, stores, the model
// client with its middleware chain, the pipeline and the HTTP server.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"planforge/internal/activity"
	"planforge/internal/gateway/config"
	"planforge/internal/gateway/handler"
	"planforge/internal/gateway/server"
	"planforge/internal/llm"
	"planforge/internal/pipeline"
)

type App struct {
	server *server.Server
	llm    llm.Client
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	stores, err := initStores(cfg)
	if err != nil {
		return nil, err
	}

	client, err := newLLMClient(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	recorder := newActivityRecorder(cfg)
	watchHandler := handler.NewWatchHandler()

	pipe, err := pipeline.New(pipeline.Config{
		LLM:         client,
		Ideas:       stores.ideas,
		Validations: stores.validations,
		Features:    stores.features,
		TechStacks:  stores.techstacks,
		Artifacts:   stores.artifacts,
		Activity:    recorder,
		OnEvent:     watchHandler.Publish,
	})
	if err != nil {
		return nil, err
	}

	ideaHandler := handler.NewIdeaHandler(pipe)
	planHandler := handler.NewPlanHandler(stores.ideas, stores.validations, stores.features, stores.techstacks)

	mux := server.NewMux(ideaHandler, planHandler, watchHandler)
	srv := server.New(cfg.Port, mux)

	return &App{server: srv, llm: client}, nil
}

func newLLMClient(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	var base llm.Client
	switch cfg.LLM.Provider {
	case "gemini":
		gem, err := llm.NewGeminiClient(ctx, cfg.LLM.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
		}
		base = gem
	default:
		log.Printf("llm: using fake client (provider %q)", cfg.LLM.Provider)
		base = llm.NewFakeClient()
	}
	return llm.Wrap(base,
		llm.WithLogging(nil),
		llm.WithUsageLedger(cfg.LLM.LedgerPath),
		llm.Retry(cfg.LLM.RetryCount, 500*time.Millisecond),
		llm.RateLimitFromEnv(),
	), nil
}

func newActivityRecorder(cfg *config.Config) activity.Recorder {
	if cfg.Redis.Addr == "" {
		return activity.NewMemoryRecorder()
	}
	rec, err := activity.NewRedisRecorder(cfg.Redis.Addr, cfg.Redis.Password)
	if err != nil {
		log.Printf("activity: redis unavailable, falling back to memory: %v", err)
		return activity.NewMemoryRecorder()
	}
	log.Printf("activity: recording runs to redis at %s", cfg.Redis.Addr)
	return rec
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	if err := a.llm.Close(); err != nil {
		log.Printf("close llm client: %v", err)
	}
	return a.server.Shutdown(ctx)
}
