package validation

import (
	"context"
	"testing"
)

func TestUpsertReplacesByIdea(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	rec := Record{IdeaID: "idea-1", MarketPotential: 40}
	if err := s.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	rec.MarketPotential = 75
	rec.Risks = []Risk{{Type: "market", Description: "niche", Severity: "medium"}}
	if err := s.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, ok, err := s.FindByIdea(ctx, "idea-1")
	if err != nil || !ok {
		t.Fatalf("FindByIdea() = %v, %v, %v", got, ok, err)
	}
	if got.MarketPotential != 75 {
		t.Errorf("MarketPotential = %d, want 75", got.MarketPotential)
	}
	if len(got.Risks) != 1 || got.Risks[0].Type != "market" {
		t.Errorf("Risks = %+v, want the replaced risk list", got.Risks)
	}
}

func TestFindByIdeaMiss(t *testing.T) {
	s := NewMemoryStore()
	_, ok, err := s.FindByIdea(context.Background(), "absent")
	if err != nil {
		t.Fatalf("FindByIdea() error = %v", err)
	}
	if ok {
		t.Fatalf("FindByIdea() ok = true, want false")
	}
}
