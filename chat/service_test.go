package chat

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/drishyamitra/drishyamitra/db"
)

// stubStore is an in-memory Store covering the filter fields the chat tests
// exercise: favorites, duplicates, person name, and the empty filter.
type stubStore struct {
	photos  []db.Photo
	persons []db.Person
	folders []db.Folder

	// folder id -> member photo ids
	memberships map[string][]string

	failAll bool
}

var errStubFailure = errors.New("stub store failure")

func newStubStore() *stubStore {
	return &stubStore{memberships: map[string][]string{}}
}

func (s *stubStore) matches(f db.PhotoFilter, p db.Photo) bool {
	if f.FavoritesOnly && !p.IsFavorite {
		return false
	}
	if f.DuplicatesOnly {
		count := 0
		for _, other := range s.photos {
			if other.FileHash != "" && other.FileHash == p.FileHash {
				count++
			}
		}
		if count < 2 {
			return false
		}
	}
	if f.PersonName != "" {
		found := false
		for _, face := range p.Faces {
			if face.PersonName == f.PersonName {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (s *stubStore) SearchPhotos(userID string, f db.PhotoFilter, limit, offset int) ([]db.Photo, int, error) {
	if s.failAll {
		return nil, 0, errStubFailure
	}
	var matched []db.Photo
	for _, p := range s.photos {
		if s.matches(f, p) {
			matched = append(matched, p)
		}
	}
	total := len(matched)
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (s *stubStore) SearchPhotoIDs(userID string, f db.PhotoFilter) ([]string, error) {
	if s.failAll {
		return nil, errStubFailure
	}
	var ids []string
	for _, p := range s.photos {
		if s.matches(f, p) {
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}

func (s *stubStore) ListDuplicateGroups(userID string) ([]db.DuplicateGroup, error) {
	if s.failAll {
		return nil, errStubFailure
	}
	byHash := map[string][]db.Photo{}
	for _, p := range s.photos {
		if p.FileHash != "" {
			byHash[p.FileHash] = append(byHash[p.FileHash], p)
		}
	}
	var groups []db.DuplicateGroup
	for hash, members := range byHash {
		if len(members) > 1 {
			groups = append(groups, db.DuplicateGroup{Hash: hash, Photos: members})
		}
	}
	return groups, nil
}

func (s *stubStore) GetLibraryStats(userID string) (*db.LibraryStats, error) {
	if s.failAll {
		return nil, errStubFailure
	}
	stats := &db.LibraryStats{TotalPhotos: len(s.photos), Persons: len(s.persons), Folders: len(s.folders)}
	for _, p := range s.photos {
		if p.IsFavorite {
			stats.Favorites++
		}
	}
	return stats, nil
}

func (s *stubStore) ListPersons(userID string) ([]db.Person, error) {
	if s.failAll {
		return nil, errStubFailure
	}
	return s.persons, nil
}

func (s *stubStore) ListFolders(userID string) ([]db.Folder, error) {
	if s.failAll {
		return nil, errStubFailure
	}
	return s.folders, nil
}

func (s *stubStore) CreateFolder(userID, name string, photoIDs []string) (*db.Folder, error) {
	if s.failAll {
		return nil, errStubFailure
	}
	folder := db.Folder{ID: fmt.Sprintf("folder-%d", len(s.folders)+1), Name: name, PhotoCount: len(photoIDs)}
	s.folders = append(s.folders, folder)
	s.memberships[folder.ID] = photoIDs
	return &folder, nil
}

func (s *stubStore) DeletePhotos(userID string, ids []string) (int, error) {
	if s.failAll {
		return 0, errStubFailure
	}
	wanted := map[string]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	var kept []db.Photo
	deleted := 0
	for _, p := range s.photos {
		if wanted[p.ID] {
			deleted++
		} else {
			kept = append(kept, p)
		}
	}
	s.photos = kept
	return deleted, nil
}

func (s *stubStore) removePhoto(id string) {
	var kept []db.Photo
	for _, p := range s.photos {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.photos = kept
}

// stubLLM is deterministic and never reaches a network
type stubLLM struct {
	available bool
	reply     string
	err       error
}

func (l stubLLM) Available() bool { return l.available }
func (l stubLLM) Respond(ctx context.Context, system string, history []Turn, prompt string) (string, error) {
	return l.reply, l.err
}

func seededStore() *stubStore {
	s := newStubStore()
	s.photos = []db.Photo{
		{ID: "p1", IsFavorite: true, FileHash: "h1"},
		{ID: "p2", IsFavorite: true, FileHash: "h2"},
		{ID: "p3", FileHash: "h2"},
		{ID: "p4", FileHash: "h3"},
	}
	s.persons = []db.Person{{ID: "pe1", Name: "Alice"}}
	return s
}

func newTestService(s *stubStore) *Service {
	return NewService(s, stubLLM{})
}

func findResult(reply *Reply, typ string) *ActionResult {
	for i := range reply.ActionResults {
		if reply.ActionResults[i].Type == typ {
			return &reply.ActionResults[i]
		}
	}
	return nil
}

func TestDeleteNeverFiresOnFirstResolution(t *testing.T) {
	store := seededStore()
	svc := newTestService(store)

	reply := svc.HandleMessage(context.Background(), "u1", "delete my favorite photos", nil)

	result := findResult(reply, ResultDeleteConfirmation)
	if result == nil {
		t.Fatalf("expected delete_confirmation result, got %+v", reply.ActionResults)
	}
	if !result.RequiresConfirmation {
		t.Error("delete_confirmation must set requires_confirmation")
	}

	data := result.Data.(DeleteConfirmationData)
	if data.Count != 2 || len(data.PhotoIDs) != 2 {
		t.Errorf("expected 2 proposed favorites, got %+v", data)
	}

	if len(store.photos) != 4 {
		t.Fatalf("store was mutated before confirmation: %d photos left", len(store.photos))
	}
}

func TestConfirmDeletesExactlyProposedSet(t *testing.T) {
	store := seededStore()
	svc := newTestService(store)

	svc.HandleMessage(context.Background(), "u1", "delete my favorite photos", nil)

	deleted, err := svc.ConfirmDeletion("u1", nil)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 deleted, got %d", deleted)
	}
	if len(store.photos) != 2 {
		t.Errorf("expected 2 photos remaining, got %d", len(store.photos))
	}

	// Nothing left to confirm
	if _, err := svc.ConfirmDeletion("u1", nil); err != ErrNoPendingDeletion {
		t.Errorf("second confirm: expected ErrNoPendingDeletion, got %v", err)
	}
}

func TestConfirmReportsActualCountWhenSetWentStale(t *testing.T) {
	store := seededStore()
	svc := newTestService(store)

	svc.HandleMessage(context.Background(), "u1", "delete my favorite photos", nil)

	// One proposed photo vanishes before the confirm arrives
	store.removePhoto("p1")

	deleted, err := svc.ConfirmDeletion("u1", nil)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected actual count 1, got %d", deleted)
	}
}

func TestSecondDeleteIntentRejectedWhilePending(t *testing.T) {
	store := seededStore()
	svc := newTestService(store)

	svc.HandleMessage(context.Background(), "u1", "delete my favorite photos", nil)
	reply := svc.HandleMessage(context.Background(), "u1", "delete my duplicate photos", nil)

	if findResult(reply, ResultDeleteConfirmation) != nil {
		t.Fatal("second delete intent must not stage another deletion")
	}
	if findResult(reply, ResultError) == nil {
		t.Fatal("expected an error result telling the user to resolve the pending deletion")
	}

	// The original proposal still confirms
	deleted, err := svc.ConfirmDeletion("u1", nil)
	if err != nil || deleted != 2 {
		t.Errorf("original proposal should survive: deleted=%d err=%v", deleted, err)
	}
}

func TestReadsProceedWhileDeletionPending(t *testing.T) {
	store := seededStore()
	svc := newTestService(store)

	svc.HandleMessage(context.Background(), "u1", "delete my favorite photos", nil)
	reply := svc.HandleMessage(context.Background(), "u1", "show my library stats", nil)

	if findResult(reply, ResultStats) == nil {
		t.Fatal("non-destructive read should proceed while a deletion is pending")
	}
	if svc.PendingDeletion("u1") == nil {
		t.Error("non-destructive read must not cancel the pending deletion")
	}
}

func TestCancelLeavesStoreUntouched(t *testing.T) {
	store := seededStore()
	svc := newTestService(store)

	svc.HandleMessage(context.Background(), "u1", "delete my favorite photos", nil)
	if err := svc.CancelDeletion("u1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if len(store.photos) != 4 {
		t.Errorf("cancel must not mutate the store, %d photos left", len(store.photos))
	}
}

func TestCountScenario(t *testing.T) {
	svc := newTestService(seededStore())

	reply := svc.HandleMessage(context.Background(), "u1", "How many photos do I have?", nil)

	result := findResult(reply, ResultCount)
	if result == nil {
		t.Fatalf("expected count result, got %+v", reply.ActionResults)
	}
	data := result.Data.(CountData)
	if data.Count != 4 || data.Context != "total photos" {
		t.Errorf("expected {4, total photos}, got %+v", data)
	}
}

func TestStatsIdempotent(t *testing.T) {
	svc := newTestService(seededStore())

	first := svc.HandleMessage(context.Background(), "u1", "show my library stats", nil)
	second := svc.HandleMessage(context.Background(), "u1", "show my library stats", nil)

	if !reflect.DeepEqual(first.ActionResults, second.ActionResults) {
		t.Error("stats with no intervening mutation should return identical payloads")
	}
}

func TestCreateFolderRoundTrip(t *testing.T) {
	store := seededStore()
	svc := newTestService(store)

	reply := svc.HandleMessage(context.Background(), "u1",
		"Create a folder named 'Trip' with my favorite photos", nil)

	result := findResult(reply, ResultFolderCreated)
	if result == nil {
		t.Fatalf("expected folder_created, got %+v", reply.ActionResults)
	}
	data := result.Data.(FolderCreatedData)
	if data.Folder.Name != "Trip" {
		t.Errorf("expected folder Trip, got %q", data.Folder.Name)
	}

	// The folder holds exactly what a favorites search returns
	searchIDs, _ := store.SearchPhotoIDs("u1", db.PhotoFilter{FavoritesOnly: true})
	if !reflect.DeepEqual(store.memberships[data.Folder.ID], searchIDs) {
		t.Errorf("membership %v != search result %v", store.memberships[data.Folder.ID], searchIDs)
	}

	// A second identical utterance creates a second, distinct folder
	svc.HandleMessage(context.Background(), "u1",
		"Create a folder named 'Trip' with my favorite photos", nil)
	if len(store.folders) != 2 {
		t.Errorf("expected 2 distinct folders, got %d", len(store.folders))
	}
}

func TestCreateFolderWithNoMatchesCreatesEmpty(t *testing.T) {
	store := newStubStore() // no photos at all
	svc := newTestService(store)

	reply := svc.HandleMessage(context.Background(), "u1",
		"Create a folder named 'Empty' with my favorite photos", nil)

	result := findResult(reply, ResultFolderCreated)
	if result == nil {
		t.Fatalf("zero matches should still create the folder, got %+v", reply.ActionResults)
	}
	data := result.Data.(FolderCreatedData)
	if data.Folder.PhotoCount != 0 {
		t.Errorf("expected empty folder, got %d photos", data.Folder.PhotoCount)
	}
	if reply.Content == "" {
		t.Error("reply should say the folder is empty")
	}
}

func TestDeleteWithNoMatchesIsInfoNotPending(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store)

	reply := svc.HandleMessage(context.Background(), "u1", "delete my favorite photos", nil)

	if findResult(reply, ResultInfo) == nil {
		t.Fatalf("expected info result for empty match, got %+v", reply.ActionResults)
	}
	if svc.PendingDeletion("u1") != nil {
		t.Error("nothing should be staged when no photos match")
	}
}

func TestEmptyMessageReturnsErrorResult(t *testing.T) {
	svc := newTestService(seededStore())

	reply := svc.HandleMessage(context.Background(), "u1", "   ", nil)
	if findResult(reply, ResultError) == nil {
		t.Fatal("empty message should produce an error result")
	}
}

func TestGeneralQuestionFallsBackWithoutLLM(t *testing.T) {
	svc := NewService(seededStore(), stubLLM{available: false})

	reply := svc.HandleMessage(context.Background(), "u1", "what can you do", nil)
	if reply.Content != llmUnavailableReply {
		t.Errorf("expected deterministic fallback, got %q", reply.Content)
	}
	if len(reply.ActionResults) != 0 {
		t.Errorf("general info should carry no structured results, got %+v", reply.ActionResults)
	}
}

func TestGeneralQuestionUsesLLMWhenAvailable(t *testing.T) {
	svc := NewService(seededStore(), stubLLM{available: true, reply: "I can organize your photos."})

	reply := svc.HandleMessage(context.Background(), "u1", "what can you do", nil)
	if reply.Content != "I can organize your photos." {
		t.Errorf("expected llm phrasing, got %q", reply.Content)
	}
}

func TestLLMFailureDegradesGracefully(t *testing.T) {
	svc := NewService(seededStore(), stubLLM{available: true, err: errors.New("timeout")})

	reply := svc.HandleMessage(context.Background(), "u1", "what can you do", nil)
	if reply.Content != llmUnavailableReply {
		t.Errorf("llm failure should fall back to canned reply, got %q", reply.Content)
	}
}

func TestLLMClassifiesUtteranceWithoutRuleCue(t *testing.T) {
	svc := NewService(seededStore(), stubLLM{available: true, reply: `{"intent": "count_photos"}`})

	// No rule-table cue in the wording; classification comes from the model.
	reply := svc.HandleMessage(context.Background(), "u1", "whats the total across my library", nil)

	result := findResult(reply, ResultCount)
	if result == nil {
		t.Fatalf("expected count result from llm classification, got %+v", reply.ActionResults)
	}
	if data := result.Data.(CountData); data.Count != 4 {
		t.Errorf("expected count 4, got %+v", data)
	}
}

func TestLLMCannotProposeMutatingIntent(t *testing.T) {
	store := seededStore()
	svc := NewService(store, stubLLM{available: true, reply: `{"intent": "delete_photos", "favorites": true}`})

	reply := svc.HandleMessage(context.Background(), "u1", "tidy things up for me", nil)

	if findResult(reply, ResultDeleteConfirmation) != nil {
		t.Fatal("a model-proposed delete must never be staged")
	}
	if svc.PendingDeletion("u1") != nil {
		t.Error("no deletion may be pending from a model classification")
	}
	if len(store.photos) != 4 {
		t.Errorf("store was mutated: %d photos left", len(store.photos))
	}
}

func TestLLMClassificationIgnoresUnknownNames(t *testing.T) {
	svc := NewService(seededStore(), stubLLM{available: true,
		reply: `{"intent": "search_photos", "person": "Mallory"}`})

	reply := svc.HandleMessage(context.Background(), "u1", "those shots again please", nil)

	result := findResult(reply, ResultPhotos)
	if result == nil {
		t.Fatalf("expected photos result, got %+v", reply.ActionResults)
	}
	// "Mallory" is not a known person, so the filter must not carry it
	if data := result.Data.(PhotosData); data.Total != 4 {
		t.Errorf("unknown person must not narrow the filter, got %+v", data)
	}
}

func TestStoreFailureSurfacesAsErrorResult(t *testing.T) {
	store := seededStore()
	store.failAll = true
	svc := newTestService(store)

	reply := svc.HandleMessage(context.Background(), "u1", "show my library stats", nil)
	if reply == nil || findResult(reply, ResultError) == nil {
		t.Fatal("store failure must surface as an error result, not break the turn")
	}
}
