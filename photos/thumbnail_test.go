package photos

import (
	"bytes"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

func TestResizeToMaxWidth(t *testing.T) {
	tests := []struct {
		w, h       int
		wantW      int
		wantH      int
		passThough bool
	}{
		{800, 600, 400, 300, false},
		{1000, 500, 400, 200, false},
		{400, 400, 400, 400, true},
		{200, 100, 200, 100, true},
	}

	for _, tt := range tests {
		src := image.NewRGBA(image.Rect(0, 0, tt.w, tt.h))
		got := resizeToMaxWidth(src, thumbnailMaxWidth)
		bounds := got.Bounds()
		if bounds.Dx() != tt.wantW || bounds.Dy() != tt.wantH {
			t.Errorf("resize %dx%d: got %dx%d, want %dx%d",
				tt.w, tt.h, bounds.Dx(), bounds.Dy(), tt.wantW, tt.wantH)
		}
		if tt.passThough && got != image.Image(src) {
			t.Errorf("resize %dx%d: small image should be returned as-is", tt.w, tt.h)
		}
	}
}

func TestGenerateThumbnail(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")

	src := image.NewRGBA(image.Rect(0, 0, 800, 600))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, nil); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	data, err := GenerateThumbnail(path)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	thumb, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("thumbnail is not valid jpeg: %v", err)
	}
	if thumb.Bounds().Dx() != thumbnailMaxWidth {
		t.Errorf("expected width %d, got %d", thumbnailMaxWidth, thumb.Bounds().Dx())
	}
}

func TestGenerateThumbnailMissingFile(t *testing.T) {
	if _, err := GenerateThumbnail("/does/not/exist.jpg"); err == nil {
		t.Error("expected error for missing file")
	}
}
