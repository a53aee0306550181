package utils

import (
	"testing"
)

func TestParseJSONFromLLMResponse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"raw object", `{"intent": "search_photos"}`, false},
		{"raw array", `["beach", "sunset"]`, false},
		{"json code block", "```json\n{\"intent\": \"count_photos\"}\n```", false},
		{"bare code block", "```\n{\"intent\": \"count_photos\"}\n```", false},
		{"surrounding text", `Here is the classification: {"intent": "show_stats"} hope that helps`, false},
		{"whitespace padding", "  \n {\"a\": 1} \n ", false},
		{"no json at all", "I cannot help with that.", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSONFromLLMResponse(tt.content)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseJSONFromLLMResponse(%q): err=%v, wantErr=%v", tt.content, err, tt.wantErr)
			}
		})
	}
}

func TestDecodeJSONFromLLMResponse(t *testing.T) {
	var out struct {
		Intent string `json:"intent"`
	}
	err := DecodeJSONFromLLMResponse("```json\n{\"intent\": \"search_photos\"}\n```", &out)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Intent != "search_photos" {
		t.Errorf("expected search_photos, got %q", out.Intent)
	}
}

func TestExtractStringList(t *testing.T) {
	parsed, err := ParseJSONFromLLMResponse(`{"tags": ["beach", " sunset ", "", 42, "golden hour"]}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	tags := ExtractStringList(parsed, "tags", 0)
	want := []string{"beach", "sunset", "golden hour"}
	if len(tags) != len(want) {
		t.Fatalf("expected %v, got %v", want, tags)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("tag %d: expected %q, got %q", i, want[i], tags[i])
		}
	}

	// Max cap applies
	capped := ExtractStringList(parsed, "tags", 2)
	if len(capped) != 2 {
		t.Errorf("expected 2 tags with cap, got %d", len(capped))
	}

	// Direct arrays work without a key
	arr, _ := ParseJSONFromLLMResponse(`["a", "b"]`)
	if got := ExtractStringList(arr, "tags", 0); len(got) != 2 {
		t.Errorf("expected 2 from direct array, got %v", got)
	}
}
