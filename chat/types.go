package chat

import (
	"context"

	"github.com/drishyamitra/drishyamitra/db"
)

// IntentKind is the fixed set of actions an utterance can resolve to
type IntentKind string

const (
	IntentSearchPhotos   IntentKind = "search_photos"
	IntentListDuplicates IntentKind = "list_duplicates"
	IntentShowStats      IntentKind = "show_stats"
	IntentCountPhotos    IntentKind = "count_photos"
	IntentListPersons    IntentKind = "list_persons"
	IntentListFolders    IntentKind = "list_folders"
	IntentCreateFolder   IntentKind = "create_folder"
	IntentDeletePhotos   IntentKind = "delete_photos"
	IntentGeneralInfo    IntentKind = "general_info"
	IntentError          IntentKind = "error"
)

// Intent is a classified utterance with its extracted parameters
type Intent struct {
	Kind       IntentKind
	Filter     db.PhotoFilter // for search, count, delete, and folder membership
	FolderName string         // for create_folder
	Message    string         // for error intents: what went wrong
}

// Result type tags carried in the chat response
const (
	ResultPhotos             = "photos"
	ResultDeleteConfirmation = "delete_confirmation"
	ResultDuplicates         = "duplicates"
	ResultStats              = "stats"
	ResultCount              = "count"
	ResultPersons            = "persons"
	ResultFolders            = "folders"
	ResultFolderCreated      = "folder_created"
	ResultInfo               = "info"
	ResultError              = "error"
)

// ActionResult is one structured payload attached to an assistant reply
type ActionResult struct {
	Type                 string `json:"type"`
	RequiresConfirmation bool   `json:"requires_confirmation,omitempty"`
	Data                 any    `json:"data"`
}

// PhotosData backs a photos result. Photos is capped at the chat page size;
// Total is the full matched count.
type PhotosData struct {
	Photos []db.Photo `json:"photos"`
	Total  int        `json:"total"`
	Filter string     `json:"filter"`
}

// DeleteConfirmationData backs a delete_confirmation result. PhotoIDs is the
// full proposed set; Preview is capped for rendering.
type DeleteConfirmationData struct {
	PhotoIDs    []string   `json:"photo_ids"`
	Count       int        `json:"count"`
	Description string     `json:"description"`
	Preview     []db.Photo `json:"preview"`
}

// DuplicatesData backs a duplicates result
type DuplicatesData struct {
	Groups     []db.DuplicateGroup `json:"groups"`
	GroupCount int                 `json:"group_count"`
	PhotoCount int                 `json:"photo_count"`
}

// CountData backs a count result
type CountData struct {
	Count   int    `json:"count"`
	Context string `json:"context"`
}

// PersonsData backs a persons result
type PersonsData struct {
	Persons []db.Person `json:"persons"`
}

// FoldersData backs a folders result
type FoldersData struct {
	Folders []db.Folder `json:"folders"`
}

// FolderCreatedData backs a folder_created result. Preview is capped;
// the folder's PhotoCount carries the full membership size.
type FolderCreatedData struct {
	Folder  *db.Folder `json:"folder"`
	Preview []db.Photo `json:"preview"`
}

// MessageData backs info and error results
type MessageData struct {
	Message string `json:"message"`
}

// Turn is one prior message of the conversation, oldest first
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Reply is the assistant's full answer for one chat turn
type Reply struct {
	Role          string         `json:"role"`
	Content       string         `json:"content"`
	ActionResults []ActionResult `json:"action_results"`
}

// Store is the persistence surface the chat pipeline runs against
type Store interface {
	SearchPhotos(userID string, f db.PhotoFilter, limit, offset int) ([]db.Photo, int, error)
	SearchPhotoIDs(userID string, f db.PhotoFilter) ([]string, error)
	ListDuplicateGroups(userID string) ([]db.DuplicateGroup, error)
	GetLibraryStats(userID string) (*db.LibraryStats, error)
	ListPersons(userID string) ([]db.Person, error)
	ListFolders(userID string) ([]db.Folder, error)
	CreateFolder(userID, name string, photoIDs []string) (*db.Folder, error)
	// DeletePhotos removes the photos and their stored files, returning how
	// many rows were actually deleted.
	DeletePhotos(userID string, ids []string) (int, error)
}

// LLM is the language-model boundary used for free-text phrasing.
// Classification never depends on it.
type LLM interface {
	Available() bool
	Respond(ctx context.Context, systemPrompt string, history []Turn, prompt string) (string, error)
}
