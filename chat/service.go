package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/drishyamitra/drishyamitra/db"
)

// Service is the chat pipeline: resolve the utterance, gate destructive
// intents behind confirmation, execute against the store, compose the reply.
type Service struct {
	store Store
	llm   LLM
	gate  *Gate

	// Turns within one session are strictly sequential: the staged-deletion
	// state machine is not safe under concurrent turns from the same user.
	turnLocks sync.Map // userID -> *sync.Mutex
}

// NewService wires a chat pipeline over the given store and language model
func NewService(store Store, llm LLM) *Service {
	return &Service{
		store: store,
		llm:   llm,
		gate:  NewGate(DefaultPendingTTL),
	}
}

func (s *Service) lockTurn(userID string) func() {
	v, _ := s.turnLocks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// HandleMessage runs one chat turn. It always returns a well-formed reply:
// internal failures surface as an error-type result inside the body, never
// as a transport error.
func (s *Service) HandleMessage(ctx context.Context, userID, message string, history []Turn) *Reply {
	defer s.lockTurn(userID)()

	message = strings.TrimSpace(message)
	if message == "" {
		return replyWith("Please type a message.", errorResult("Empty message."))
	}

	vocab := s.vocabulary(userID)

	// The rule table is the authority; the model only gets a say when no
	// lexical cue matched, and it can never propose a mutating intent.
	intent := Resolve(message, vocab)
	if intent.Kind == IntentGeneralInfo {
		if llmIntent, ok := s.classifyWithLLM(ctx, message, history, vocab); ok {
			intent = llmIntent
		}
	}

	if intent.Kind == IntentGeneralInfo {
		return &Reply{
			Role:          "assistant",
			Content:       s.composeGeneral(ctx, userID, message, history),
			ActionResults: []ActionResult{},
		}
	}

	result := s.execute(userID, intent)
	content := s.compose(ctx, userID, intent, result, message, history)

	return replyWith(content, result)
}

func replyWith(content string, results ...ActionResult) *Reply {
	return &Reply{Role: "assistant", Content: content, ActionResults: results}
}

// vocabulary loads the name context the resolver extracts parameters against.
// A store failure degrades to an empty vocabulary instead of failing the turn.
func (s *Service) vocabulary(userID string) Vocabulary {
	vocab := Vocabulary{Categories: db.DefaultCategories}
	if persons, err := s.store.ListPersons(userID); err == nil {
		for _, p := range persons {
			vocab.PersonNames = append(vocab.PersonNames, p.Name)
		}
	}
	return vocab
}

// ConfirmDeletion executes the user's staged deletion. photoIDs restricts
// the confirm to a subset of the proposal; empty means the whole set. The
// returned count is what was actually removed, which may be less than
// proposed when rows vanished in between.
func (s *Service) ConfirmDeletion(userID string, photoIDs []string) (int, error) {
	defer s.lockTurn(userID)()

	ids, err := s.gate.Take(userID, photoIDs)
	if err != nil {
		return 0, err
	}
	return s.store.DeletePhotos(userID, ids)
}

// CancelDeletion discards the user's staged deletion without deleting anything
func (s *Service) CancelDeletion(userID string) error {
	defer s.lockTurn(userID)()
	return s.gate.Cancel(userID)
}

// PendingDeletion exposes the staged deletion, if any, for status rendering
func (s *Service) PendingDeletion(userID string) *PendingDeletion {
	return s.gate.Pending(userID)
}
