package chat

import (
	"testing"
	"time"
)

func TestGateRegisterAndTake(t *testing.T) {
	g := NewGate(time.Minute)

	pending := &PendingDeletion{
		PhotoIDs:    []string{"a", "b", "c"},
		Count:       3,
		Description: "duplicates",
	}
	if err := g.Register("user1", pending); err != nil {
		t.Fatalf("register: %v", err)
	}

	if got := g.Pending("user1"); got == nil || got.Count != 3 {
		t.Fatal("expected staged deletion to be visible")
	}

	ids, err := g.Take("user1", []string{"a", "c"})
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "c" {
		t.Errorf("expected [a c], got %v", ids)
	}

	// Taken means cleared
	if g.Pending("user1") != nil {
		t.Error("staged deletion should be cleared after take")
	}
}

func TestGateTakeEmptyRequestMeansWholeSet(t *testing.T) {
	g := NewGate(time.Minute)
	g.Register("user1", &PendingDeletion{PhotoIDs: []string{"a", "b"}, Count: 2})

	ids, err := g.Take("user1", nil)
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("expected the whole proposed set, got %v", ids)
	}
}

func TestGateTakeNeverExceedsProposal(t *testing.T) {
	g := NewGate(time.Minute)
	g.Register("user1", &PendingDeletion{PhotoIDs: []string{"a"}, Count: 1})

	// Requesting IDs outside the staged set must not widen the deletion
	ids, err := g.Take("user1", []string{"a", "x", "y"})
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	if len(ids) != 1 || ids[0] != "a" {
		t.Errorf("expected [a], got %v", ids)
	}
}

func TestGateSecondRegisterRejected(t *testing.T) {
	g := NewGate(time.Minute)
	g.Register("user1", &PendingDeletion{PhotoIDs: []string{"a"}, Count: 1})

	err := g.Register("user1", &PendingDeletion{PhotoIDs: []string{"b"}, Count: 1})
	if err != ErrDeletionPending {
		t.Fatalf("expected ErrDeletionPending, got %v", err)
	}

	// The original proposal is untouched
	ids, _ := g.Take("user1", nil)
	if len(ids) != 1 || ids[0] != "a" {
		t.Errorf("pending deletion was replaced: got %v", ids)
	}
}

func TestGateUsersAreIsolated(t *testing.T) {
	g := NewGate(time.Minute)
	g.Register("user1", &PendingDeletion{PhotoIDs: []string{"a"}, Count: 1})

	if err := g.Register("user2", &PendingDeletion{PhotoIDs: []string{"b"}, Count: 1}); err != nil {
		t.Fatalf("second user should stage independently: %v", err)
	}
	if _, err := g.Take("user2", nil); err != nil {
		t.Fatalf("take user2: %v", err)
	}
	if g.Pending("user1") == nil {
		t.Error("user1's staged deletion should survive user2's confirm")
	}
}

func TestGateCancel(t *testing.T) {
	g := NewGate(time.Minute)

	if err := g.Cancel("user1"); err != ErrNoPendingDeletion {
		t.Fatalf("cancel with nothing staged: expected ErrNoPendingDeletion, got %v", err)
	}

	g.Register("user1", &PendingDeletion{PhotoIDs: []string{"a"}, Count: 1})
	if err := g.Cancel("user1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := g.Take("user1", nil); err != ErrNoPendingDeletion {
		t.Error("cancelled deletion should not be confirmable")
	}
}

func TestGateExpiry(t *testing.T) {
	g := NewGate(10 * time.Millisecond)
	g.Register("user1", &PendingDeletion{PhotoIDs: []string{"a"}, Count: 1})

	time.Sleep(30 * time.Millisecond)

	if g.Pending("user1") != nil {
		t.Error("expired staged deletion should not be visible")
	}
	if _, err := g.Take("user1", nil); err != ErrNoPendingDeletion {
		t.Error("expired staged deletion should not be confirmable")
	}

	// Expiry frees the slot for a fresh proposal
	if err := g.Register("user1", &PendingDeletion{PhotoIDs: []string{"b"}, Count: 1}); err != nil {
		t.Errorf("register after expiry: %v", err)
	}
}
