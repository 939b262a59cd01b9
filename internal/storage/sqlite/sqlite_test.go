package sqlite

import (
	"context"
	"testing"

	"github.com/michaelbrown/crucible/internal/llm"
	"github.com/michaelbrown/crucible/internal/runner"
	"github.com/michaelbrown/crucible/internal/storage"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening memory db: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndGetConversation(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	conv := &storage.Conversation{
		ID:       "abc12345-0000-0000-0000-000000000000",
		Title:    "scratchpad",
		Provider: "ollama",
		Model:    "qwen3:14b",
	}

	if err := s.CreateConversation(ctx, conv); err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}

	got, err := s.GetConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}

	if got.Title != "scratchpad" {
		t.Errorf("title = %q, want %q", got.Title, "scratchpad")
	}
	if got.Provider != "ollama" {
		t.Errorf("provider = %q, want %q", got.Provider, "ollama")
	}
	if got.CreatedAt.IsZero() {
		t.Error("created_at should not be zero")
	}
}

func TestGetConversationByPrefix(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	conv := &storage.Conversation{ID: "abc12345-0000-0000-0000-000000000000"}
	if err := s.CreateConversation(ctx, conv); err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}

	got, err := s.GetConversation(ctx, "abc12345")
	if err != nil {
		t.Fatalf("GetConversation by prefix: %v", err)
	}
	if got.ID != conv.ID {
		t.Errorf("got ID %q, want %q", got.ID, conv.ID)
	}

	if _, err := s.GetConversation(ctx, "zzz"); err == nil {
		t.Error("expected not-found error for unknown prefix")
	}
}

func TestSaveAndLoadMessages(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	conv := &storage.Conversation{ID: "conv-1"}
	if err := s.CreateConversation(ctx, conv); err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}

	messages := []llm.Message{
		llm.UserMessage("run my code"),
		llm.AssistantMessage("done: 4"),
	}
	if err := s.SaveMessages(ctx, conv.ID, messages); err != nil {
		t.Fatalf("SaveMessages: %v", err)
	}

	got, err := s.LoadMessages(ctx, conv.ID)
	if err != nil {
		t.Fatalf("LoadMessages: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("loaded %d messages, want 2", len(got))
	}
	if got[0].Role != llm.RoleUser || got[1].Content != "done: 4" {
		t.Errorf("messages round-trip mismatch: %+v", got)
	}
}

func TestDeleteConversation(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	conv := &storage.Conversation{ID: "conv-del"}
	if err := s.CreateConversation(ctx, conv); err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}

	if err := s.DeleteConversation(ctx, conv.ID); err != nil {
		t.Fatalf("DeleteConversation: %v", err)
	}
	if _, err := s.GetConversation(ctx, conv.ID); err == nil {
		t.Error("conversation should be gone")
	}
	if msgs, _ := s.LoadMessages(ctx, conv.ID); msgs != nil {
		t.Errorf("messages should be gone, got %v", msgs)
	}
}

func TestListConversations(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, id := range []string{"c1", "c2", "c3"} {
		if err := s.CreateConversation(ctx, &storage.Conversation{ID: id}); err != nil {
			t.Fatalf("CreateConversation(%s): %v", id, err)
		}
	}

	got, err := s.ListConversations(ctx, storage.ConversationListOptions{Limit: 2})
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("listed %d conversations, want 2", len(got))
	}
}

func TestRecordAndListRuns(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	runs := []*storage.Run{
		{ID: "r1", Language: runner.JavaScript, Success: true, DurationMs: 12},
		{ID: "r2", Language: runner.JSON, Success: false, DurationMs: 1},
	}
	for _, r := range runs {
		if err := s.RecordRun(ctx, r); err != nil {
			t.Fatalf("RecordRun(%s): %v", r.ID, err)
		}
	}

	got, err := s.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("listed %d runs, want 2", len(got))
	}
	for _, r := range got {
		if r.ID == "r1" && (!r.Success || r.Language != runner.JavaScript) {
			t.Errorf("run r1 round-trip mismatch: %+v", r)
		}
		if r.ID == "r2" && r.Success {
			t.Errorf("run r2 should be a failure: %+v", r)
		}
	}
}
