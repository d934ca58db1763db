package workflow

import (
	"errors"
	"testing"
)

func TestNewRegistry_Catalog(t *testing.T) {
	r, err := NewRegistry(Catalog())
	if err != nil {
		t.Fatalf("NewRegistry(Catalog()) error: %v", err)
	}
	defs := r.List()
	if len(defs) != 5 {
		t.Fatalf("expected 5 workflows, got %d", len(defs))
	}
	for i := 1; i < len(defs); i++ {
		if defs[i-1].ID >= defs[i].ID {
			t.Errorf("List not ordered: %q before %q", defs[i-1].ID, defs[i].ID)
		}
	}
}

func TestNewRegistry_DuplicateID(t *testing.T) {
	defs := []Definition{
		{ID: "dup", Name: "First", Enabled: true},
		{ID: "dup", Name: "Second", Enabled: true},
	}
	if _, err := NewRegistry(defs); err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestNewRegistry_EmptyID(t *testing.T) {
	if _, err := NewRegistry([]Definition{{Name: "unnamed"}}); err == nil {
		t.Fatal("expected empty id error")
	}
}

func TestRegistry_List_IsolatedCopies(t *testing.T) {
	r, err := NewRegistry(Catalog())
	if err != nil {
		t.Fatalf("NewRegistry error: %v", err)
	}

	defs := r.List()
	defs[0].Steps[0].Integration = "tampered"
	defs[0].Steps[0].Parameters["tampered"] = true

	fresh, err := r.Get(defs[0].ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if fresh.Steps[0].Integration == "tampered" {
		t.Error("List copy shares step backing array with the registry")
	}
	if _, ok := fresh.Steps[0].Parameters["tampered"]; ok {
		t.Error("List copy shares step parameter maps with the registry")
	}
}

func TestRegistry_Get(t *testing.T) {
	r, err := NewRegistry(Catalog())
	if err != nil {
		t.Fatalf("NewRegistry error: %v", err)
	}
	def, err := r.Get("employee-onboarding")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if def.FinalApprovalLevel != ApprovalClinicalDirector {
		t.Errorf("FinalApprovalLevel = %q, want clinical_director", def.FinalApprovalLevel)
	}
	if !def.RequiresFinalApproval {
		t.Error("expected RequiresFinalApproval")
	}

	if _, err := r.Get("no-such-workflow"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
