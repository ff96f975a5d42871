package techstack

import (
	"context"
	"testing"
)

func TestUpsertReplacesByProject(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	rec := Record{
		ProjectID: "p1",
		Frontend:  []Option{{Name: "React", Popularity: 85}},
	}
	if err := s.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	rec.Frontend = []Option{{Name: "Svelte", Popularity: 60}}
	if err := s.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, ok, err := s.FindByProject(ctx, "p1")
	if err != nil || !ok {
		t.Fatalf("FindByProject() = %v, %v, %v", got, ok, err)
	}
	if len(got.Frontend) != 1 || got.Frontend[0].Name != "Svelte" {
		t.Errorf("Frontend = %+v, want the replaced option", got.Frontend)
	}
}

func TestFindByProjectMiss(t *testing.T) {
	s := NewMemoryStore()
	_, ok, err := s.FindByProject(context.Background(), "absent")
	if err != nil {
		t.Fatalf("FindByProject() error = %v", err)
	}
	if ok {
		t.Fatalf("FindByProject() ok = true, want false")
	}
}
