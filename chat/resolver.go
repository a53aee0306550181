package chat

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/drishyamitra/drishyamitra/db"
)

// Vocabulary is the library context the resolver extracts parameters against.
// Person and category names come from the caller so resolution stays
// deterministic and needs no store access of its own.
type Vocabulary struct {
	PersonNames []string
	Categories  []string
}

type intentPattern struct {
	kind  IntentKind
	match func(text string) bool
}

// intentPatterns is evaluated in order; the first match wins. Destructive and
// structural actions come first so co-occurring cues never silently
// reinterpret them as a search.
var intentPatterns = []intentPattern{
	{IntentDeletePhotos, anyOf("delete", "remove", "erase", "get rid of", "clean up")},
	{IntentCreateFolder, func(t string) bool {
		return anyOf("create", "make", "new", "add")(t) && anyOf("folder", "album")(t)
	}},
	{IntentListDuplicates, anyOf("duplicate", "identical photo", "same photo")},
	{IntentShowStats, anyOf("stats", "statistic", "overview", "breakdown", "summary")},
	{IntentCountPhotos, anyOf("how many", "count", "number of")},
	{IntentListPersons, anyOf("people", "persons", "faces", "who is in")},
	{IntentListFolders, anyOf("folders", "albums", "my folder")},
	{IntentSearchPhotos, anyOf(
		"show", "find", "search", "display", "see",
		"photos of", "pictures of", "photos from", "pictures from",
		"favorite", "favourite",
	)},
}

func anyOf(cues ...string) func(string) bool {
	return func(text string) bool {
		for _, cue := range cues {
			if strings.Contains(text, cue) {
				return true
			}
		}
		return false
	}
}

var (
	yearRe       = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	tagRe        = regexp.MustCompile(`\btag(?:ged)?\s+(?:with\s+|as\s+)?"?([\w][\w -]*?)"?(?:\s+photos?)?$`)
	quotedNameRe = regexp.MustCompile(`["']([^"']+)["']`)
	namedRe      = regexp.MustCompile(`(?:folder|album)\s+(?:named|called)\s+(\S+)`)
)

var relativeTimePhrases = []struct {
	phrase string
	key    string
}{
	{"today", "today"},
	{"yesterday", "yesterday"},
	{"this week", "last_7_days"},
	{"last week", "last_week"},
	{"this month", "last_month"},
	{"last month", "last_month"},
	{"last year", "last_year"},
	{"recent", "last_7_days"},
}

// Resolve classifies an utterance into exactly one intent and extracts its
// parameters. It is purely lexical: anything with no recognized action cue
// resolves to general_info, never to a guessed mutating action.
func Resolve(utterance string, vocab Vocabulary) Intent {
	text := normalize(utterance)
	if text == "" {
		return Intent{Kind: IntentError, Message: "Please type a message."}
	}

	for _, p := range intentPatterns {
		if !p.match(text) {
			continue
		}
		switch p.kind {
		case IntentDeletePhotos:
			return resolveDelete(text, vocab)
		case IntentCreateFolder:
			return resolveCreateFolder(utterance, text, vocab)
		case IntentSearchPhotos:
			return Intent{Kind: IntentSearchPhotos, Filter: extractFilter(text, vocab, true)}
		case IntentCountPhotos:
			return Intent{Kind: IntentCountPhotos, Filter: extractFilter(text, vocab, false)}
		default:
			return Intent{Kind: p.kind}
		}
	}

	return Intent{Kind: IntentGeneralInfo}
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// resolveDelete fails closed: with no resolvable filter and no explicit
// "all", the resolver reports an error instead of fabricating a target set.
func resolveDelete(text string, vocab Vocabulary) Intent {
	filter := extractFilter(text, vocab, false)
	if filter.IsZero() && !anyOf("all photos", "everything", "all my photos", "entire library")(text) {
		return Intent{
			Kind:    IntentError,
			Message: "I couldn't tell which photos to delete. Try something like \"delete my duplicate photos\" or \"delete photos of Alice\".",
		}
	}
	return Intent{Kind: IntentDeletePhotos, Filter: filter}
}

func resolveCreateFolder(original, text string, vocab Vocabulary) Intent {
	name := extractFolderName(original, text)
	if name == "" {
		return Intent{
			Kind:    IntentError,
			Message: "What should the folder be called? Try \"create a folder named 'Trip' with my favorite photos\".",
		}
	}
	return Intent{
		Kind:       IntentCreateFolder,
		FolderName: name,
		Filter:     extractFilter(text, vocab, false),
	}
}

// extractFolderName prefers a quoted name from the original utterance so
// casing survives, then falls back to the word after "named"/"called".
func extractFolderName(original, text string) string {
	if m := quotedNameRe.FindStringSubmatch(original); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	if m := namedRe.FindStringSubmatch(text); len(m) > 1 {
		return strings.Trim(m[1], `"'.,!?`)
	}
	return ""
}

// extractFilter pulls every recognizable predicate out of the text.
// When asSearch is set and nothing structured was found, the leftover words
// become a free-text search term.
func extractFilter(text string, vocab Vocabulary, asSearch bool) db.PhotoFilter {
	var f db.PhotoFilter

	if anyOf("favorite", "favourite")(text) {
		f.FavoritesOnly = true
	}
	if strings.Contains(text, "duplicate") {
		f.DuplicatesOnly = true
	}
	if anyOf("unknown face", "unnamed face", "untagged face")(text) {
		f.UnknownFaces = true
	}

	for _, name := range vocab.PersonNames {
		if name != "" && strings.Contains(text, strings.ToLower(name)) {
			f.PersonName = name
			break
		}
	}

	for _, cat := range vocab.Categories {
		if cat != "" && strings.Contains(text, strings.ToLower(cat)) {
			f.Category = cat
			break
		}
	}

	for _, rt := range relativeTimePhrases {
		if strings.Contains(text, rt.phrase) {
			f.RelativeTime = rt.key
			break
		}
	}

	if m := yearRe.FindString(text); m != "" {
		if year, err := strconv.Atoi(m); err == nil {
			f.Year = year
		}
	}

	if m := tagRe.FindStringSubmatch(text); len(m) > 1 {
		f.Tag = strings.TrimSpace(m[1])
	}

	if asSearch && f.IsZero() {
		if term := searchTerm(text); term != "" {
			f.Search = term
		}
	}

	return f
}

var searchStopWords = map[string]bool{
	"show": true, "me": true, "find": true, "search": true, "for": true,
	"display": true, "see": true, "my": true, "all": true, "the": true,
	"photos": true, "photo": true, "pictures": true, "picture": true,
	"pics": true, "images": true, "image": true, "of": true, "with": true,
	"from": true, "a": true, "an": true, "please": true, "can": true,
	"you": true, "i": true, "want": true, "to": true,
}

// searchTerm strips command filler and returns what's left as free text
func searchTerm(text string) string {
	var kept []string
	for _, word := range strings.Fields(text) {
		word = strings.Trim(word, `"'.,!?`)
		if word == "" || searchStopWords[word] {
			continue
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}
