package integration

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
)

func TestRegistry_CallDispatchesByName(t *testing.T) {
	reg := NewRegistry()
	var gotAction string
	reg.Register("sterling", HandlerFunc(func(_ context.Context, action string, params, execContext map[string]interface{}) (map[string]interface{}, error) {
		gotAction = action
		return map[string]interface{}{"ok": true}, nil
	}))

	out, err := reg.Call(context.Background(), "sterling", "order-check", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAction != "order-check" {
		t.Errorf("expected action order-check, got %s", gotAction)
	}
	if out["ok"] != true {
		t.Errorf("expected handler output, got %v", out)
	}
}

func TestRegistry_CallUnknownIntegration(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Call(context.Background(), "ghost", "anything", nil, nil); err == nil {
		t.Error("expected error for unregistered integration")
	}
}

func TestRegistry_CallWrapsHandlerError(t *testing.T) {
	reg := NewRegistry()
	reg.Register("axxess", HandlerFunc(func(_ context.Context, _ string, _, _ map[string]interface{}) (map[string]interface{}, error) {
		return nil, fmt.Errorf("connection refused")
	}))
	_, err := reg.Call(context.Background(), "axxess", "sync", nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestRegistry_Names(t *testing.T) {
	reg := NewRegistry()
	reg.Register("sendgrid", Simulated("sendgrid", zerolog.Nop()))
	reg.Register("ai-qa", Simulated("ai-qa", zerolog.Nop()))
	names := reg.Names()
	if len(names) != 2 || names[0] != "ai-qa" || names[1] != "sendgrid" {
		t.Errorf("expected sorted names [ai-qa sendgrid], got %v", names)
	}
}

func TestSimulated_Succeeds(t *testing.T) {
	h := Simulated("supabase", zerolog.Nop())
	out, err := h.Call(context.Background(), "create-record", map[string]interface{}{"table": "hr_files"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["simulated"] != true {
		t.Errorf("expected simulated marker, got %v", out)
	}
}
