package photos

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/heic"
	"golang.org/x/image/draw"

	// Register decoders so image.Decode can handle the formats we accept
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	thumbnailMaxWidth = 400
	thumbnailQuality  = 80
)

// GenerateThumbnail decodes an image file, resizes it to thumbnailMaxWidth,
// and encodes the result as JPEG.
func GenerateThumbnail(imagePath string) ([]byte, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	var img image.Image

	// HEIC/HEIF needs a dedicated decoder (not registered with image.Decode)
	ext := strings.ToLower(filepath.Ext(imagePath))
	if ext == ".heic" || ext == ".heif" {
		img, err = heic.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decode heic: %w", err)
		}
	} else {
		img, _, err = image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decode image: %w", err)
		}
	}

	thumb := resizeToMaxWidth(img, thumbnailMaxWidth)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg thumbnail: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteThumbnail generates and stores the thumbnail next to the original,
// under a thumbs/ subdirectory, and returns the thumbnail path.
func WriteThumbnail(imagePath string) (string, error) {
	data, err := GenerateThumbnail(imagePath)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(filepath.Dir(imagePath), "thumbs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	base := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	thumbPath := filepath.Join(dir, base+".jpg")
	if err := os.WriteFile(thumbPath, data, 0644); err != nil {
		return "", err
	}
	return thumbPath, nil
}

// resizeToMaxWidth scales an image so its width is at most maxWidth pixels,
// preserving aspect ratio. If the image is already smaller it is returned as-is.
func resizeToMaxWidth(src image.Image, maxWidth int) image.Image {
	bounds := src.Bounds()
	srcW := bounds.Dx()
	srcH := bounds.Dy()

	if srcW <= maxWidth {
		return src
	}

	newW := maxWidth
	newH := srcH * maxWidth / srcW

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}
