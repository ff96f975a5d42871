package idea

import (
	"context"
	"testing"
)

func TestPutOverwritesByID(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	rec := Record{ID: "idea-1", ProjectID: "p1", Description: "first"}
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	rec.Description = "second"
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	got, ok, err := s.FindByProject(ctx, "p1")
	if err != nil || !ok {
		t.Fatalf("FindByProject() = %v, %v, %v", got, ok, err)
	}
	if got.Description != "second" {
		t.Fatalf("Description = %q, want %q", got.Description, "second")
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
