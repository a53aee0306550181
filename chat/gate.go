package chat

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrDeletionPending means a delete intent arrived while another
	// deletion still awaits confirmation.
	ErrDeletionPending = errors.New("a deletion is already awaiting confirmation")
	// ErrNoPendingDeletion means confirm/cancel arrived with nothing staged.
	ErrNoPendingDeletion = errors.New("no deletion is awaiting confirmation")
)

// PendingDeletion is a staged batch delete awaiting explicit confirmation
type PendingDeletion struct {
	PhotoIDs    []string
	Count       int
	Description string
	CreatedAt   time.Time
}

// Gate holds at most one PendingDeletion per user. A deletion only ever
// executes through Take after an explicit confirm call; resolving a delete
// intent merely stages it here.
type Gate struct {
	mu      sync.Mutex
	ttl     time.Duration
	pending map[string]*PendingDeletion
}

// DefaultPendingTTL bounds how long a staged deletion stays confirmable
const DefaultPendingTTL = 10 * time.Minute

// NewGate creates a gate with the given pending lifetime.
// A non-positive ttl falls back to DefaultPendingTTL.
func NewGate(ttl time.Duration) *Gate {
	if ttl <= 0 {
		ttl = DefaultPendingTTL
	}
	return &Gate{
		ttl:     ttl,
		pending: make(map[string]*PendingDeletion),
	}
}

// Register stages a deletion for the user. Returns ErrDeletionPending when
// one is already outstanding; it is never silently replaced.
func (g *Gate) Register(userID string, p *PendingDeletion) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.sweepLocked()

	if _, ok := g.pending[userID]; ok {
		return ErrDeletionPending
	}

	p.CreatedAt = time.Now()
	g.pending[userID] = p
	return nil
}

// Pending returns the user's staged deletion, or nil
func (g *Gate) Pending(userID string) *PendingDeletion {
	g.mu.Lock()
	defer g.mu.Unlock()

	p := g.pending[userID]
	if p != nil && g.expired(p) {
		delete(g.pending, userID)
		return nil
	}
	return p
}

// Take confirms the user's staged deletion and returns the photo IDs to
// delete: the intersection of the requested set with the staged set, so a
// confirm call can never reach beyond what was proposed. The staged record
// is cleared whether or not the caller goes on to delete successfully.
func (g *Gate) Take(userID string, requested []string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p := g.pending[userID]
	if p == nil || g.expired(p) {
		delete(g.pending, userID)
		return nil, ErrNoPendingDeletion
	}
	delete(g.pending, userID)

	staged := make(map[string]bool, len(p.PhotoIDs))
	for _, id := range p.PhotoIDs {
		staged[id] = true
	}

	// Empty request means "the whole proposed set"
	if len(requested) == 0 {
		return p.PhotoIDs, nil
	}

	var ids []string
	for _, id := range requested {
		if staged[id] {
			ids = append(ids, id)
			staged[id] = false
		}
	}
	return ids, nil
}

// Cancel discards the user's staged deletion without touching the store
func (g *Gate) Cancel(userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.pending[userID]
	if !ok || g.expired(p) {
		delete(g.pending, userID)
		return ErrNoPendingDeletion
	}
	delete(g.pending, userID)
	return nil
}

func (g *Gate) expired(p *PendingDeletion) bool {
	return time.Since(p.CreatedAt) > g.ttl
}

// sweepLocked drops expired records so the map stays bounded by active users
func (g *Gate) sweepLocked() {
	for userID, p := range g.pending {
		if g.expired(p) {
			delete(g.pending, userID)
		}
	}
}
