package agent

import (
	"context"
	"testing"

	"github.com/plu-programming-party/partybot/internal/llm"
)

func TestRegistry_SingleOwnerInvariant(t *testing.T) {
	r := NewRegistry()
	a := newTestSession(t, llm.NewMockClient())
	b := newTestSession(t, llm.NewMockClient())

	if err := r.Insert(a); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := r.Insert(b); err == nil {
		t.Fatal("second insert for same identity must fail")
	}

	got, ok := r.Get("user-1")
	if !ok || got.ID() != a.ID() {
		t.Errorf("Get returned %v, %v", got, ok)
	}

	r.Remove("user-1")
	if _, ok := r.Get("user-1"); ok {
		t.Error("session still present after Remove")
	}
	if err := r.Insert(b); err != nil {
		t.Errorf("insert after remove: %v", err)
	}
}

// ---------- service routing ----------

func newTestService(t *testing.T, client llm.Client) *Service {
	t.Helper()
	return NewService(ServiceConfig{
		Client:   client,
		Executor: NewExecutor(t.TempDir()),
		Model:    "claude-sonnet-4-20250514",
	})
}

func TestService_CompleteClearsRegistry(t *testing.T) {
	mock := llm.NewMockClient(llm.MockResponse{Content: "done", StopReason: llm.StopEndTurn})
	sv := newTestService(t, mock)

	out := sv.Prompt(context.Background(), "alice", "hi")
	if out.Status != OutcomeComplete {
		t.Fatalf("Status = %q", out.Status)
	}
	if sv.Registry().Len() != 0 {
		t.Errorf("registry not cleared after completion: %d live", sv.Registry().Len())
	}
}

func TestService_QuestionKeepsSessionAliveAndResumes(t *testing.T) {
	mock := llm.NewMockClient(
		toolUse(llm.ToolCall{ID: "q1", Name: "ask_user", Input: map[string]interface{}{"question": "Which page?"}}),
		llm.MockResponse{Content: "ok, about page", StopReason: llm.StopEndTurn},
	)
	sv := newTestService(t, mock)

	out := sv.Prompt(context.Background(), "alice", "change the page")
	if out.Status != OutcomeQuestion || out.Text != "Which page?" {
		t.Fatalf("outcome = %+v", out)
	}
	if sv.Registry().Len() != 1 {
		t.Fatal("suspended session should stay registered")
	}

	out = sv.Prompt(context.Background(), "alice", "about page")
	if out.Status != OutcomeComplete {
		t.Fatalf("Status after answer = %q (%q)", out.Status, out.Text)
	}
	if sv.Registry().Len() != 0 {
		t.Error("registry not cleared after completion")
	}
}

func TestService_IterationCapClearsRegistry(t *testing.T) {
	mock := llm.NewMockClient(
		toolUse(llm.ToolCall{ID: "t", Name: "list_directory", Input: map[string]interface{}{"path": "."}}),
	)
	sv := NewService(ServiceConfig{
		Client:        mock,
		Executor:      NewExecutor(t.TempDir()),
		MaxIterations: 20,
	})

	out := sv.Prompt(context.Background(), "alice", "loop forever")
	if out.Status != OutcomeError || out.Text != "Max iterations reached" {
		t.Fatalf("outcome = %+v", out)
	}
	if sv.Registry().Len() != 0 {
		t.Error("aborted session should be removed from registry")
	}
}

func TestService_IndependentIdentities(t *testing.T) {
	mock := llm.NewMockClient(llm.MockResponse{Content: "done", StopReason: llm.StopEndTurn})
	sv := newTestService(t, mock)

	for _, id := range []string{"alice", "bob"} {
		if out := sv.Prompt(context.Background(), id, "hello"); out.Status != OutcomeComplete {
			t.Errorf("identity %s: Status = %q", id, out.Status)
		}
	}
}
