package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/drishyamitra/drishyamitra/db"
	"github.com/drishyamitra/drishyamitra/log"
	"github.com/drishyamitra/drishyamitra/utils"
)

// classification is the JSON shape the language model is asked to return
// when the rule table found no cue in the utterance.
type classification struct {
	Intent       string `json:"intent"`
	Person       string `json:"person"`
	Category     string `json:"category"`
	Search       string `json:"search"`
	Favorites    bool   `json:"favorites"`
	Duplicates   bool   `json:"duplicates"`
	Year         int    `json:"year"`
	RelativeTime string `json:"relative_time"`
}

// llmIntentKinds are the intents the model may classify into. Mutating
// intents are absent on purpose: deletions and folder creation require an
// explicit lexical cue, so only the rule table resolves them.
var llmIntentKinds = map[string]IntentKind{
	"search_photos":   IntentSearchPhotos,
	"list_duplicates": IntentListDuplicates,
	"show_stats":      IntentShowStats,
	"count_photos":    IntentCountPhotos,
	"list_persons":    IntentListPersons,
	"list_folders":    IntentListFolders,
}

var validRelativeTimes = map[string]bool{
	"today":       true,
	"yesterday":   true,
	"last_7_days": true,
	"last_week":   true,
	"last_month":  true,
	"last_year":   true,
}

// classifyWithLLM asks the language model to classify an utterance the rule
// table couldn't. Anything that fails to parse, names an unknown intent, or
// names a mutating intent is discarded and the turn stays general_info.
func (s *Service) classifyWithLLM(ctx context.Context, message string, history []Turn, vocab Vocabulary) (Intent, bool) {
	if !s.llm.Available() {
		return Intent{}, false
	}

	raw, err := s.llm.Respond(ctx, classifySystemPrompt(vocab), trimHistory(history), message)
	if err != nil || raw == "" {
		return Intent{}, false
	}

	var c classification
	if err := utils.DecodeJSONFromLLMResponse(raw, &c); err != nil {
		return Intent{}, false
	}

	kind, ok := llmIntentKinds[strings.ToLower(strings.TrimSpace(c.Intent))]
	if !ok {
		if c.Intent != "" && c.Intent != "general_info" {
			log.Debug().Str("intent", c.Intent).Msg("model proposed an intent outside the allowed set")
		}
		return Intent{}, false
	}

	return Intent{Kind: kind, Filter: c.filter(vocab)}, true
}

// filter builds the photo filter from the model's extraction, keeping only
// values the library actually knows. The model never introduces a person or
// category that isn't in the vocabulary.
func (c classification) filter(vocab Vocabulary) db.PhotoFilter {
	f := db.PhotoFilter{
		FavoritesOnly:  c.Favorites,
		DuplicatesOnly: c.Duplicates,
	}

	for _, name := range vocab.PersonNames {
		if strings.EqualFold(name, strings.TrimSpace(c.Person)) && name != "" {
			f.PersonName = name
			break
		}
	}
	for _, cat := range vocab.Categories {
		if strings.EqualFold(cat, strings.TrimSpace(c.Category)) && cat != "" {
			f.Category = cat
			break
		}
	}
	if validRelativeTimes[c.RelativeTime] {
		f.RelativeTime = c.RelativeTime
	}
	if c.Year >= 1900 && c.Year <= 2100 {
		f.Year = c.Year
	}
	if f.IsZero() {
		f.Search = strings.TrimSpace(c.Search)
	}
	return f
}

func classifySystemPrompt(vocab Vocabulary) string {
	return fmt.Sprintf(`You classify a photo-library request into one intent.
Intents: search_photos, list_duplicates, show_stats, count_photos, list_persons, list_folders, general_info.
Known people: %s. Known categories: %s.
Respond with JSON only, in the format:
{"intent": "...", "person": "", "category": "", "search": "", "favorites": false, "duplicates": false, "year": 0, "relative_time": ""}
relative_time is one of: today, yesterday, last_7_days, last_week, last_month, last_year, or empty.
Only use people and categories from the known lists. When unsure, use general_info.`,
		strings.Join(vocab.PersonNames, ", "), strings.Join(vocab.Categories, ", "))
}
