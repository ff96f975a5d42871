package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"planforge/internal/pipeline"
	"planforge/internal/types/plan"
)

type IdeaHandler struct {
	pipe *pipeline.Pipeline
}

func NewIdeaHandler(pipe *pipeline.Pipeline) *IdeaHandler {
	return &IdeaHandler{pipe: pipe}
}

// HandleProcess runs the full analysis for one idea submission. The call is
// synchronous; clients wanting progress subscribe to /api/runs/watch.
func (h *IdeaHandler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	var req plan.IdeaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		http.Error(w, "description is required", http.StatusBadRequest)
		return
	}

	res, err := h.pipe.ProcessIdea(r.Context(), req)
	if err != nil {
		if errors.Is(err, pipeline.ErrInvalidProjectID) {
			http.Error(w, "projectId must be a 24-character hex id", http.StatusBadRequest)
			return
		}
		log.Printf("process idea for project %s: %v", req.ProjectID, err)
		http.Error(w, "idea processing failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
