package server

import (
	"net/http"

	"planforge/internal/gateway/handler"
	"planforge/internal/gateway/middleware"
)

func NewMux(
	ideaHandler *handler.IdeaHandler,
	planHandler *handler.PlanHandler,
	watchHandler *handler.WatchHandler,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/ideas/process", ideaHandler.HandleProcess)
	mux.HandleFunc("GET /api/projects/{projectId}/plan", planHandler.HandlePlan)
	mux.HandleFunc("GET /api/runs/watch", watchHandler.HandleWatch)
	mux.HandleFunc("GET /health", handler.HandleHealth)

	return middleware.CORS(mux)
}
