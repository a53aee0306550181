package utils

import (
	"strings"
	"testing"
)

func TestIsAllowedImage(t *testing.T) {
	tests := []struct {
		filename string
		allowed  bool
	}{
		{"photo.jpg", true},
		{"photo.JPEG", true},
		{"photo.png", true},
		{"photo.heic", true},
		{"photo.webp", true},
		{"document.pdf", false},
		{"video.mp4", false},
		{"noextension", false},
	}
	for _, tt := range tests {
		if got := IsAllowedImage(tt.filename); got != tt.allowed {
			t.Errorf("IsAllowedImage(%q) = %v, want %v", tt.filename, got, tt.allowed)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := SanitizeFilename("../../etc/passwd"); strings.Contains(got, "/") {
		t.Errorf("path separators survived: %q", got)
	}
	if got := SanitizeFilename(`what<is>this:"file"?.jpg`); strings.ContainsAny(got, `<>:"?*|`) {
		t.Errorf("problematic characters survived: %q", got)
	}
}

func TestHashReader(t *testing.T) {
	hash, err := HashReader(strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	// md5("hello")
	if hash != "5d41402abc4b2a76b9719d911017c592" {
		t.Errorf("unexpected hash %q", hash)
	}

	same, _ := HashReader(strings.NewReader("hello"))
	other, _ := HashReader(strings.NewReader("hello!"))
	if hash != same || hash == other {
		t.Error("hash should be stable for identical content and differ otherwise")
	}
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		if got := HumanSize(tt.n); got != tt.want {
			t.Errorf("HumanSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
