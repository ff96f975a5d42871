package handler

import (
	"log"
	"net/http"

	"planforge/internal/repository/feature"
	"planforge/internal/repository/idea"
	"planforge/internal/repository/techstack"
	"planforge/internal/repository/validation"
)

type PlanHandler struct {
	ideas       idea.Store
	validations validation.Store
	features    feature.Store
	techstacks  techstack.Store
}

func NewPlanHandler(ideas idea.Store, validations validation.Store, features feature.Store, techstacks techstack.Store) *PlanHandler {
	return &PlanHandler{ideas: ideas, validations: validations, features: features, techstacks: techstacks}
}

// planView aggregates everything persisted for one project. Sections a run
// has not produced yet are null.
type planView struct {
	Idea       *idea.Record       `json:"idea"`
	Validation *validation.Record `json:"validation"`
	Features   []feature.Record   `json:"features"`
	TechStack  *techstack.Record  `json:"techStack"`
}

func (h *PlanHandler) HandlePlan(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectId")
	ctx := r.Context()

	ideaRec, ok, err := h.ideas.FindByProject(ctx, projectID)
	if err != nil {
		log.Printf("load idea for project %s: %v", projectID, err)
		http.Error(w, "failed to load plan", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "no idea submitted for project", http.StatusNotFound)
		return
	}

	view := planView{Idea: &ideaRec, Features: []feature.Record{}}

	if vrec, ok, err := h.validations.FindByIdea(ctx, ideaRec.ID); err != nil {
		log.Printf("load validation for idea %s: %v", ideaRec.ID, err)
		http.Error(w, "failed to load plan", http.StatusInternalServerError)
		return
	} else if ok {
		view.Validation = &vrec
	}

	feats, err := h.features.ListByProject(ctx, projectID)
	if err != nil {
		log.Printf("load features for project %s: %v", projectID, err)
		http.Error(w, "failed to load plan", http.StatusInternalServerError)
		return
	}
	view.Features = feats

	if srec, ok, err := h.techstacks.FindByProject(ctx, projectID); err != nil {
		log.Printf("load tech stack for project %s: %v", projectID, err)
		http.Error(w, "failed to load plan", http.StatusInternalServerError)
		return
	} else if ok {
		view.TechStack = &srec
	}

	writeJSON(w, http.StatusOK, view)
}
