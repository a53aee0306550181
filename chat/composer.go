package chat

import (
	"context"
	"fmt"

	"github.com/drishyamitra/drishyamitra/db"
	"github.com/drishyamitra/drishyamitra/log"
)

// llmUnavailableReply is the deterministic fallback when the language model
// cannot be reached. The turn still returns a well-formed response.
const llmUnavailableReply = "I can help you search photos, find duplicates, create folders, show stats, or delete photos. What would you like to do?"

// compose turns the executed result into the assistant's text. The text only
// summarizes what the structured payload already carries; the payload is the
// source of truth.
func (s *Service) compose(ctx context.Context, userID string, intent Intent, result ActionResult, utterance string, history []Turn) string {
	if result.Type == ResultError || result.Type == ResultInfo {
		if data, ok := result.Data.(MessageData); ok {
			return data.Message
		}
	}

	switch result.Type {
	case ResultPhotos:
		return composePhotos(result.Data.(PhotosData))
	case ResultDeleteConfirmation:
		data := result.Data.(DeleteConfirmationData)
		return fmt.Sprintf("I found %s matching %s. This cannot be undone — please confirm to delete them, or cancel.",
			plural(data.Count, "photo"), data.Description)
	case ResultDuplicates:
		data := result.Data.(DuplicatesData)
		if data.GroupCount == 0 {
			return "Good news: I didn't find any duplicate photos in your library."
		}
		return fmt.Sprintf("I found %s of duplicates covering %s. You can keep one from each group and delete the rest.",
			plural(data.GroupCount, "group"), plural(data.PhotoCount, "photo"))
	case ResultStats:
		return composeStats(result.Data.(*db.LibraryStats))
	case ResultCount:
		data := result.Data.(CountData)
		return fmt.Sprintf("You have %s (%s).", plural(data.Count, "photo"), data.Context)
	case ResultPersons:
		data := result.Data.(PersonsData)
		if len(data.Persons) == 0 {
			return "I haven't identified any people in your library yet. Name a face in a photo to get started."
		}
		return fmt.Sprintf("I know %s in your library.", plural(len(data.Persons), "person"))
	case ResultFolders:
		data := result.Data.(FoldersData)
		if len(data.Folders) == 0 {
			return "You don't have any folders yet. Ask me to create one!"
		}
		return fmt.Sprintf("You have %s.", plural(len(data.Folders), "folder"))
	case ResultFolderCreated:
		data := result.Data.(FolderCreatedData)
		if data.Folder.PhotoCount == 0 {
			return fmt.Sprintf("I created the folder \"%s\". No photos matched, so it's empty for now — you can add photos to it anytime.", data.Folder.Name)
		}
		return fmt.Sprintf("I created the folder \"%s\" with %s.", data.Folder.Name, plural(data.Folder.PhotoCount, "photo"))
	}

	return s.composeGeneral(ctx, userID, utterance, history)
}

func composePhotos(data PhotosData) string {
	if data.Total == 0 {
		return fmt.Sprintf("I couldn't find any photos matching %s.", data.Filter)
	}
	if data.Total > len(data.Photos) {
		return fmt.Sprintf("I found %s matching %s. Here are the first %d.",
			plural(data.Total, "photo"), data.Filter, len(data.Photos))
	}
	return fmt.Sprintf("I found %s matching %s.", plural(data.Total, "photo"), data.Filter)
}

func composeStats(stats *db.LibraryStats) string {
	msg := fmt.Sprintf("Your library has %s", plural(stats.TotalPhotos, "photo"))
	if stats.Favorites > 0 {
		msg += fmt.Sprintf(", %d of them favorites", stats.Favorites)
	}
	if stats.Persons > 0 {
		msg += fmt.Sprintf(", across %s", plural(stats.Persons, "person"))
	}
	if stats.DuplicateGroups > 0 {
		msg += fmt.Sprintf(", with %s of duplicates worth cleaning up", plural(stats.DuplicateGroups, "group"))
	}
	return msg + "."
}

// composeGeneral answers free-form questions through the language model,
// grounded with a library snapshot. Degrades to a canned reply when the
// model is unavailable or fails.
func (s *Service) composeGeneral(ctx context.Context, userID, utterance string, history []Turn) string {
	if !s.llm.Available() {
		return llmUnavailableReply
	}

	systemPrompt := generalSystemPrompt
	if stats, err := s.store.GetLibraryStats(userID); err == nil {
		systemPrompt += "\n\n" + libraryContext(stats)
	}

	reply, err := s.llm.Respond(ctx, systemPrompt, trimHistory(history), utterance)
	if err != nil || reply == "" {
		log.Warn().Err(err).Msg("llm phrasing failed, using fallback reply")
		return llmUnavailableReply
	}
	return reply
}

const generalSystemPrompt = `You are the assistant inside a personal photo library app.
You can search photos, list duplicates, show library stats, count photos, list people and folders, create folders, and stage photo deletions for confirmation.
Answer briefly and concretely. If the user seems to want one of those actions, tell them how to phrase it.
Never claim to have performed an action yourself.`

// libraryContext renders a compact stats snapshot for grounding
func libraryContext(stats *db.LibraryStats) string {
	return fmt.Sprintf(
		"Library snapshot: %d photos, %d favorites, %d people, %d folders, %d duplicate groups.",
		stats.TotalPhotos, stats.Favorites, stats.Persons, stats.Folders, stats.DuplicateGroups)
}

// trimHistory keeps only the recent turns to bound prompt size
func trimHistory(history []Turn) []Turn {
	const maxTurns = 10
	if len(history) > maxTurns {
		return history[len(history)-maxTurns:]
	}
	return history
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	if noun == "person" && n != 1 {
		return fmt.Sprintf("%d people", n)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
