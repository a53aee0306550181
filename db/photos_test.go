package db

import (
	"strings"
	"testing"
)

func TestPhotoFilterDescribe(t *testing.T) {
	tests := []struct {
		filter PhotoFilter
		want   string
	}{
		{PhotoFilter{}, "all photos"},
		{PhotoFilter{FavoritesOnly: true}, "favorites"},
		{PhotoFilter{DuplicatesOnly: true}, "duplicates"},
		{PhotoFilter{PersonName: "Alice"}, "person: Alice"},
		{PhotoFilter{PersonName: "Alice", Tag: "beach"}, "person: Alice, tag: beach"},
		{PhotoFilter{Year: 2023}, "year 2023"},
		{PhotoFilter{RelativeTime: "last_7_days"}, "last 7 days"},
	}

	for _, tt := range tests {
		if got := tt.filter.Describe(); got != tt.want {
			t.Errorf("Describe(%+v) = %q, want %q", tt.filter, got, tt.want)
		}
	}
}

func TestPhotoFilterIsZero(t *testing.T) {
	if !(PhotoFilter{}).IsZero() {
		t.Error("empty filter should be zero")
	}
	if (PhotoFilter{FavoritesOnly: true}).IsZero() {
		t.Error("favorites filter should not be zero")
	}
	if (PhotoFilter{Search: "beach"}).IsZero() {
		t.Error("search filter should not be zero")
	}
}

func TestBuildPhotoWhere(t *testing.T) {
	// Empty filter only scopes by owner
	where, args := buildPhotoWhere("u1", PhotoFilter{})
	if where != "p.user_id = ?" {
		t.Errorf("unexpected where for empty filter: %q", where)
	}
	if len(args) != 1 || args[0] != "u1" {
		t.Errorf("unexpected args: %v", args)
	}

	// Each predicate contributes a clause and the matching args
	where, args = buildPhotoWhere("u1", PhotoFilter{
		PersonName:     "Alice",
		Category:       "Travel",
		FavoritesOnly:  true,
		DuplicatesOnly: true,
		Year:           2023,
	})
	for _, fragment := range []string{"persons", "categories", "is_favorite = 1", "file_hash", "BETWEEN"} {
		if !strings.Contains(where, fragment) {
			t.Errorf("where clause missing %q: %s", fragment, where)
		}
	}
	// user + person + category + duplicates-user + year range bounds
	if len(args) != 6 {
		t.Errorf("expected 6 args, got %d: %v", len(args), args)
	}

	// Placeholder count always matches the arg count
	if got := strings.Count(where, "?"); got != len(args) {
		t.Errorf("%d placeholders but %d args", got, len(args))
	}
}

func TestBuildPhotoWhereIgnoresMalformedDates(t *testing.T) {
	where, args := buildPhotoWhere("u1", PhotoFilter{DateFrom: "not-a-date", DateTo: "also bad"})
	if where != "p.user_id = ?" || len(args) != 1 {
		t.Errorf("malformed dates should contribute nothing: %q %v", where, args)
	}
}

func TestBuildPhotoWhereRelativeTime(t *testing.T) {
	where, args := buildPhotoWhere("u1", PhotoFilter{RelativeTime: "last_7_days"})
	if !strings.Contains(where, "p.uploaded_at >= ?") {
		t.Errorf("expected uploaded_at cutoff, got %q", where)
	}
	if len(args) != 2 {
		t.Errorf("expected 2 args, got %v", args)
	}

	// Unknown keys are ignored rather than guessed
	where, args = buildPhotoWhere("u1", PhotoFilter{RelativeTime: "sometime"})
	if where != "p.user_id = ?" || len(args) != 1 {
		t.Errorf("unknown relative time should contribute nothing: %q %v", where, args)
	}
}
