package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/drishyamitra/drishyamitra/db"
	"github.com/drishyamitra/drishyamitra/photos"
	"github.com/drishyamitra/drishyamitra/vendors"
)

var (
	defaultService     *Service
	defaultServiceOnce sync.Once
)

// GetService returns the singleton chat service backed by the real database
// and the OpenAI client.
func GetService() *Service {
	defaultServiceOnce.Do(func() {
		defaultService = NewService(dbStore{}, openaiLLM{})
	})
	return defaultService
}

// dbStore adapts the db package to the chat Store interface
type dbStore struct{}

func (dbStore) SearchPhotos(userID string, f db.PhotoFilter, limit, offset int) ([]db.Photo, int, error) {
	return db.SearchPhotos(userID, f, limit, offset)
}

func (dbStore) SearchPhotoIDs(userID string, f db.PhotoFilter) ([]string, error) {
	return db.SearchPhotoIDs(userID, f)
}

func (dbStore) ListDuplicateGroups(userID string) ([]db.DuplicateGroup, error) {
	return db.ListDuplicateGroups(userID)
}

func (dbStore) GetLibraryStats(userID string) (*db.LibraryStats, error) {
	return db.GetLibraryStats(userID)
}

func (dbStore) ListPersons(userID string) ([]db.Person, error) {
	return db.ListPersons(userID)
}

func (dbStore) ListFolders(userID string) ([]db.Folder, error) {
	return db.ListFolders(userID)
}

func (dbStore) CreateFolder(userID, name string, photoIDs []string) (*db.Folder, error) {
	return db.CreateFolder(userID, name, photoIDs)
}

// DeletePhotos removes the rows and then the files on disk. A file that
// fails to delete is logged and skipped; the row is already gone and the
// count reflects rows, not files.
func (dbStore) DeletePhotos(userID string, ids []string) (int, error) {
	deleted, err := db.DeletePhotosBatch(userID, ids)
	if err != nil {
		return 0, err
	}
	for _, d := range deleted {
		photos.RemoveFiles(d.Filepath)
	}
	return len(deleted), nil
}

// openaiLLM adapts the OpenAI vendor client to the chat LLM interface
type openaiLLM struct{}

func (openaiLLM) Available() bool {
	return vendors.GetOpenAIClient().Available()
}

func (openaiLLM) Respond(ctx context.Context, systemPrompt string, history []Turn, prompt string) (string, error) {
	client := vendors.GetOpenAIClient()
	if client == nil {
		return "", nil
	}

	turns := make([]vendors.ChatTurn, 0, len(history))
	for _, t := range history {
		turns = append(turns, vendors.ChatTurn{Role: t.Role, Content: t.Content})
	}

	resp, err := client.Complete(ctx, vendors.CompletionOptions{
		SystemPrompt: systemPrompt,
		History:      turns,
		Prompt:       prompt,
		Temperature:  0.7,
	})
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", nil
	}
	return strings.TrimSpace(resp.Content), nil
}
