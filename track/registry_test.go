package track

import (
	"testing"

	"github.com/richinex/redline/model"
)

func pendingOp(id string) model.Operation {
	return model.Operation{
		ID:        id,
		Kind:      model.KindAddition,
		Range:     model.ContentRange{From: 0, To: 5},
		AfterText: "hello",
		Status:    model.StatusPending,
	}
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry(nil)

	if err := r.Register(pendingOp("op-1")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	op, ok := r.Get("op-1")
	if !ok {
		t.Fatal("expected operation to exist")
	}
	if op.AfterText != "hello" {
		t.Errorf("expected afterText 'hello', got %q", op.AfterText)
	}
}

func TestRegistryDuplicateRegister(t *testing.T) {
	r := NewRegistry(nil)

	if err := r.Register(pendingOp("op-1")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(pendingOp("op-1")); err == nil {
		t.Error("expected error on duplicate register")
	}
}

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Register(pendingOp("op-1")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	r.Resolve("op-1", model.StatusAccepted)

	op, _ := r.Get("op-1")
	if op.Status != model.StatusAccepted {
		t.Errorf("expected accepted, got %s", op.Status)
	}
	if len(r.AllPending()) != 0 {
		t.Error("expected no pending operations after resolve")
	}
}

func TestRegistryResolveTwiceIsNoOp(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Register(pendingOp("op-1")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	r.Resolve("op-1", model.StatusAccepted)
	r.Resolve("op-1", model.StatusRejected)

	op, _ := r.Get("op-1")
	if op.Status != model.StatusAccepted {
		t.Errorf("second resolve must not change status, got %s", op.Status)
	}
}

func TestRegistryResolveUnknownDoesNotPanic(t *testing.T) {
	r := NewRegistry(nil)
	r.Resolve("missing", model.StatusRejected)
}

func TestRegistryResolveToNonTerminalIgnored(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Register(pendingOp("op-1")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	r.Resolve("op-1", model.StatusPending)

	op, _ := r.Get("op-1")
	if op.Status != model.StatusPending {
		t.Errorf("expected status unchanged, got %s", op.Status)
	}
}

func TestRegistryAllPendingPreservesOrder(t *testing.T) {
	r := NewRegistry(nil)
	for _, id := range []string{"a", "b", "c"} {
		if err := r.Register(pendingOp(id)); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}
	r.Resolve("b", model.StatusRejected)

	pending := r.AllPending()
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}
	if pending[0].ID != "a" || pending[1].ID != "c" {
		t.Errorf("unexpected order: %s, %s", pending[0].ID, pending[1].ID)
	}
}

func TestRegistryClear(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Register(pendingOp("op-1")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	r.Clear()

	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d entries", r.Len())
	}
}
