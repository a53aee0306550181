package chat

import (
	"fmt"

	"github.com/drishyamitra/drishyamitra/log"
)

// Chat-rendering caps. Full result sets stay available through the regular
// gallery endpoints; chat replies only carry a page.
const (
	chatPageSize = 12
	previewSize  = 6
)

// execute performs the resolved intent against the store and produces its
// structured result. Store failures surface as an error result, never as a
// partial payload.
func (s *Service) execute(userID string, intent Intent) ActionResult {
	switch intent.Kind {
	case IntentSearchPhotos:
		return s.executeSearch(userID, intent)
	case IntentListDuplicates:
		return s.executeDuplicates(userID)
	case IntentShowStats:
		return s.executeStats(userID)
	case IntentCountPhotos:
		return s.executeCount(userID, intent)
	case IntentListPersons:
		return s.executePersons(userID)
	case IntentListFolders:
		return s.executeFolders(userID)
	case IntentCreateFolder:
		return s.executeCreateFolder(userID, intent)
	case IntentDeletePhotos:
		return s.executeDelete(userID, intent)
	case IntentError:
		return errorResult(intent.Message)
	default:
		return errorResult("I didn't understand that request.")
	}
}

func errorResult(message string) ActionResult {
	return ActionResult{Type: ResultError, Data: MessageData{Message: message}}
}

func infoResult(message string) ActionResult {
	return ActionResult{Type: ResultInfo, Data: MessageData{Message: message}}
}

func storeError(op string, err error) ActionResult {
	log.Error().Err(err).Str("op", op).Msg("chat store operation failed")
	return errorResult("Something went wrong while looking that up. Please try again.")
}

func (s *Service) executeSearch(userID string, intent Intent) ActionResult {
	photos, total, err := s.store.SearchPhotos(userID, intent.Filter, chatPageSize, 0)
	if err != nil {
		return storeError("search_photos", err)
	}
	return ActionResult{Type: ResultPhotos, Data: PhotosData{
		Photos: photos,
		Total:  total,
		Filter: intent.Filter.Describe(),
	}}
}

func (s *Service) executeDuplicates(userID string) ActionResult {
	groups, err := s.store.ListDuplicateGroups(userID)
	if err != nil {
		return storeError("list_duplicates", err)
	}
	photoCount := 0
	for _, g := range groups {
		photoCount += len(g.Photos)
	}
	return ActionResult{Type: ResultDuplicates, Data: DuplicatesData{
		Groups:     groups,
		GroupCount: len(groups),
		PhotoCount: photoCount,
	}}
}

func (s *Service) executeStats(userID string) ActionResult {
	stats, err := s.store.GetLibraryStats(userID)
	if err != nil {
		return storeError("show_stats", err)
	}
	return ActionResult{Type: ResultStats, Data: stats}
}

func (s *Service) executeCount(userID string, intent Intent) ActionResult {
	_, total, err := s.store.SearchPhotos(userID, intent.Filter, 1, 0)
	if err != nil {
		return storeError("count_photos", err)
	}
	ctx := "total photos"
	if !intent.Filter.IsZero() {
		ctx = "photos matching " + intent.Filter.Describe()
	}
	return ActionResult{Type: ResultCount, Data: CountData{Count: total, Context: ctx}}
}

func (s *Service) executePersons(userID string) ActionResult {
	persons, err := s.store.ListPersons(userID)
	if err != nil {
		return storeError("list_persons", err)
	}
	return ActionResult{Type: ResultPersons, Data: PersonsData{Persons: persons}}
}

func (s *Service) executeFolders(userID string) ActionResult {
	folders, err := s.store.ListFolders(userID)
	if err != nil {
		return storeError("list_folders", err)
	}
	return ActionResult{Type: ResultFolders, Data: FoldersData{Folders: folders}}
}

// executeCreateFolder resolves the implicit filter to a concrete membership
// set first, so the folder holds exactly what a search with the same filter
// would have returned at this instant. A filter matching nothing still
// creates the folder, empty; the composer says so.
func (s *Service) executeCreateFolder(userID string, intent Intent) ActionResult {
	ids, err := s.store.SearchPhotoIDs(userID, intent.Filter)
	if err != nil {
		return storeError("create_folder", err)
	}

	folder, err := s.store.CreateFolder(userID, intent.FolderName, ids)
	if err != nil {
		return storeError("create_folder", err)
	}

	preview, _, err := s.store.SearchPhotos(userID, intent.Filter, previewSize, 0)
	if err != nil {
		return storeError("create_folder", err)
	}

	return ActionResult{Type: ResultFolderCreated, Data: FolderCreatedData{
		Folder:  folder,
		Preview: preview,
	}}
}

// executeDelete never deletes. It resolves the filter to a concrete ID set,
// stages it behind the gate, and returns a confirmation request. A second
// delete intent while one is staged is rejected, not replaced.
func (s *Service) executeDelete(userID string, intent Intent) ActionResult {
	ids, err := s.store.SearchPhotoIDs(userID, intent.Filter)
	if err != nil {
		return storeError("delete_photos", err)
	}
	if len(ids) == 0 {
		return infoResult(fmt.Sprintf("No photos match %s, so there is nothing to delete.", intent.Filter.Describe()))
	}

	pending := &PendingDeletion{
		PhotoIDs:    ids,
		Count:       len(ids),
		Description: intent.Filter.Describe(),
	}
	if err := s.gate.Register(userID, pending); err != nil {
		return errorResult("You already have a deletion waiting for confirmation. Please confirm or cancel it first.")
	}

	preview, _, err := s.store.SearchPhotos(userID, intent.Filter, previewSize, 0)
	if err != nil {
		preview = nil
	}

	return ActionResult{
		Type:                 ResultDeleteConfirmation,
		RequiresConfirmation: true,
		Data: DeleteConfirmationData{
			PhotoIDs:    ids,
			Count:       len(ids),
			Description: pending.Description,
			Preview:     preview,
		},
	}
}
