package chat

import (
	"testing"
)

var testVocab = Vocabulary{
	PersonNames: []string{"Alice", "Bob Smith"},
	Categories:  []string{"Travel", "Food", "Nature"},
}

func TestResolveIntentKinds(t *testing.T) {
	tests := []struct {
		utterance string
		want      IntentKind
		desc      string
	}{
		{"Delete my duplicate photos", IntentDeletePhotos, "delete wins over duplicates"},
		{"delete photos of Alice", IntentDeletePhotos, "delete by person"},
		{"remove all my photos", IntentDeletePhotos, "delete all"},
		{"Create a folder named 'Trip' with my favorite photos", IntentCreateFolder, "create folder"},
		{"make a new album called Summer", IntentCreateFolder, "album synonym"},
		{"show my duplicate photos", IntentListDuplicates, "duplicates"},
		{"show me my library stats", IntentShowStats, "stats wins over search"},
		{"How many photos do I have?", IntentCountPhotos, "count"},
		{"what people are in my photos", IntentListPersons, "persons"},
		{"list my folders", IntentListFolders, "folders"},
		{"show me photos of Alice", IntentSearchPhotos, "search by person"},
		{"find my favorite pictures", IntentSearchPhotos, "search favorites"},
		{"what's the weather like", IntentGeneralInfo, "no action cue"},
		{"tell me a joke", IntentGeneralInfo, "no action cue"},
		{"", IntentError, "empty"},
		{"   ", IntentError, "whitespace only"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got := Resolve(tt.utterance, testVocab)
			if got.Kind != tt.want {
				t.Errorf("Resolve(%q): expected %s, got %s", tt.utterance, tt.want, got.Kind)
			}
		})
	}
}

func TestResolveNeverGuessesMutatingIntent(t *testing.T) {
	// Utterances with no recognized action keyword must resolve to
	// general_info or error, never to anything that writes.
	utterances := []string{
		"hello there",
		"what can you do",
		"is it going to rain tomorrow",
		"thanks!",
	}
	for _, u := range utterances {
		got := Resolve(u, testVocab)
		if got.Kind == IntentDeletePhotos || got.Kind == IntentCreateFolder {
			t.Errorf("Resolve(%q) produced mutating intent %s", u, got.Kind)
		}
	}
}

func TestResolveDeleteFailsClosed(t *testing.T) {
	got := Resolve("delete some stuff", testVocab)
	if got.Kind != IntentError {
		t.Fatalf("delete with no resolvable filter: expected error intent, got %s", got.Kind)
	}
	if got.Message == "" {
		t.Error("error intent should carry an explanatory message")
	}
}

func TestResolveDeleteFilterExtraction(t *testing.T) {
	got := Resolve("Delete my duplicate photos", testVocab)
	if got.Kind != IntentDeletePhotos {
		t.Fatalf("expected delete_photos, got %s", got.Kind)
	}
	if !got.Filter.DuplicatesOnly {
		t.Error("expected duplicates-only filter")
	}

	got = Resolve("delete photos of Bob Smith", testVocab)
	if got.Filter.PersonName != "Bob Smith" {
		t.Errorf("expected person filter Bob Smith, got %q", got.Filter.PersonName)
	}
}

func TestResolveCreateFolder(t *testing.T) {
	got := Resolve("Create a folder named 'Trip' with my favorite photos", testVocab)
	if got.Kind != IntentCreateFolder {
		t.Fatalf("expected create_folder, got %s", got.Kind)
	}
	if got.FolderName != "Trip" {
		t.Errorf("expected folder name Trip, got %q", got.FolderName)
	}
	if !got.Filter.FavoritesOnly {
		t.Error("expected favorites filter for folder membership")
	}

	// No name: fails closed with a clarifying error
	got = Resolve("create a folder", testVocab)
	if got.Kind != IntentError {
		t.Errorf("create_folder without a name: expected error intent, got %s", got.Kind)
	}
}

func TestResolveSearchFilters(t *testing.T) {
	got := Resolve("show me photos of Alice", testVocab)
	if got.Filter.PersonName != "Alice" {
		t.Errorf("expected person Alice, got %q", got.Filter.PersonName)
	}

	got = Resolve("find my travel photos", testVocab)
	if got.Filter.Category != "Travel" {
		t.Errorf("expected category Travel, got %q", got.Filter.Category)
	}

	got = Resolve("show photos from 2023", testVocab)
	if got.Filter.Year != 2023 {
		t.Errorf("expected year 2023, got %d", got.Filter.Year)
	}

	got = Resolve("show me photos from last week", testVocab)
	if got.Filter.RelativeTime != "last_week" {
		t.Errorf("expected relative time last_week, got %q", got.Filter.RelativeTime)
	}

	// Free text falls through to search term when nothing structured matches
	got = Resolve("find sunset beach", testVocab)
	if got.Filter.Search != "sunset beach" {
		t.Errorf("expected search term %q, got %q", "sunset beach", got.Filter.Search)
	}
}
