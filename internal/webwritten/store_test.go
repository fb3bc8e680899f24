package webwritten

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "webwritten.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_StoryOrderedByPosition(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, sentence := range []string{"First.", "Second.", "Third."} {
		if err := store.AppendStory(ctx, sentence, "seed"); err != nil {
			t.Fatal(err)
		}
	}

	story, err := store.Story(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if story != "First. Second. Third." {
		t.Errorf("story = %q", story)
	}

	n, err := store.StoryLength(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("StoryLength = %d", n)
	}
}

func TestStore_VoteFlow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.AddPending(ctx, "A candidate sentence.", "", "llm")
	if err != nil {
		t.Fatal(err)
	}

	if err := store.AddVote(ctx, id, "voter-1", 4); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if err := store.AddVote(ctx, id, "voter-1", 5); err != ErrAlreadyVoted {
		t.Errorf("duplicate vote error = %v, want ErrAlreadyVoted", err)
	}
	if err := store.AddVote(ctx, id, "voter-2", 6); err == nil {
		t.Error("rating above 5 should be rejected")
	}

	// voter-1 has exhausted the pool; voter-2 has not.
	next, err := store.RandomActive(ctx, "voter-1")
	if err != nil {
		t.Fatal(err)
	}
	if next != nil {
		t.Errorf("voter-1 should have no sentence left, got %+v", next)
	}
	next, err = store.RandomActive(ctx, "voter-2")
	if err != nil {
		t.Fatal(err)
	}
	if next == nil || next.ID != id {
		t.Errorf("voter-2 sentence = %+v", next)
	}
	if next.VotesCount != 1 || next.AverageRating != 4 {
		t.Errorf("sentence totals = %+v", next)
	}
}

func TestStore_SelectWinner(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	lowID, _ := store.AddPending(ctx, "Low rated.", "", "llm")
	highID, _ := store.AddPending(ctx, "High rated.", "", "llm")
	fewID, _ := store.AddPending(ctx, "Great but undervoted.", "", "llm")

	for _, voter := range []string{"a", "b", "c"} {
		if err := store.AddVote(ctx, lowID, voter, 2); err != nil {
			t.Fatal(err)
		}
		if err := store.AddVote(ctx, highID, voter, 5); err != nil {
			t.Fatal(err)
		}
	}
	// Only two votes: below the floor even with a perfect average.
	_ = store.AddVote(ctx, fewID, "a", 5)
	_ = store.AddVote(ctx, fewID, "b", 5)

	winner, err := store.SelectWinner(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if winner == nil {
		t.Fatal("expected a winner")
	}
	if winner.Sentence != "High rated." {
		t.Errorf("winner = %q", winner.Sentence)
	}
	if winner.Votes != 3 || winner.Rating != 5 {
		t.Errorf("winner stats = %+v", winner)
	}

	story, _ := store.Story(ctx)
	if story != "High rated." {
		t.Errorf("story after selection = %q", story)
	}

	// The winner is out of the pool; the next round has no qualifier.
	again, err := store.SelectWinner(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if again != nil {
		t.Errorf("second selection should have no qualifier, got %+v", again)
	}
}

func TestStore_SelectWinnerNoQualifier(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, _ := store.AddPending(ctx, "Only two votes.", "", "llm")
	_ = store.AddVote(ctx, id, "a", 5)
	_ = store.AddVote(ctx, id, "b", 5)

	winner, err := store.SelectWinner(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if winner != nil {
		t.Errorf("no sentence reaches the vote floor, got %+v", winner)
	}
}

func TestStore_DeleteUnvotedActive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	votedID, _ := store.AddPending(ctx, "Voted.", "", "llm")
	_, _ = store.AddPending(ctx, "Unvoted one.", "", "llm")
	_, _ = store.AddPending(ctx, "Unvoted two.", "", "user")
	if err := store.AddVote(ctx, votedID, "a", 3); err != nil {
		t.Fatal(err)
	}

	deleted, err := store.DeleteUnvotedActive(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}
	count, _ := store.ActiveCount(ctx)
	if count != 1 {
		t.Errorf("active count = %d, want 1", count)
	}
}
