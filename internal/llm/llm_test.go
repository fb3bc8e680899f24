package llm

import (
	"context"
	"errors"
	"testing"
)

func TestMockClient_SequenceAndRepeat(t *testing.T) {
	mock := NewMockClient(
		MockResponse{Content: "one", StopReason: StopEndTurn},
		MockResponse{Content: "two", StopReason: StopEndTurn},
	)

	for _, want := range []string{"one", "two", "two", "two"} {
		resp, err := mock.Chat(context.Background(), ChatRequest{})
		if err != nil {
			t.Fatal(err)
		}
		if resp.Content != want {
			t.Errorf("Content = %q, want %q", resp.Content, want)
		}
	}
	if mock.CallCount() != 4 {
		t.Errorf("CallCount = %d", mock.CallCount())
	}
}

func TestMockClient_Error(t *testing.T) {
	mock := NewMockClient(MockResponse{Error: errors.New("boom")})
	if _, err := mock.Chat(context.Background(), ChatRequest{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestMockClient_RecordsRequests(t *testing.T) {
	mock := NewMockClient(MockResponse{StopReason: StopEndTurn})
	req := ChatRequest{
		Model:  "claude-sonnet-4-20250514",
		System: "sys",
		Messages: []Message{
			{Role: RoleUser, Content: "hello"},
		},
	}
	if _, err := mock.Chat(context.Background(), req); err != nil {
		t.Fatal(err)
	}

	calls := mock.Calls()
	if len(calls) != 1 {
		t.Fatalf("Calls = %d", len(calls))
	}
	if calls[0].System != "sys" || len(calls[0].Messages) != 1 {
		t.Errorf("recorded request = %+v", calls[0])
	}
}

func TestTokenUsage_Total(t *testing.T) {
	u := TokenUsage{InputTokens: 100, OutputTokens: 25}
	if u.Total() != 125 {
		t.Errorf("Total = %d", u.Total())
	}
}
