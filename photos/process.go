package photos

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/drishyamitra/drishyamitra/config"
	"github.com/drishyamitra/drishyamitra/db"
	"github.com/drishyamitra/drishyamitra/log"
	"github.com/drishyamitra/drishyamitra/vendors"
)

// DetectAndStoreFaces runs face detection on a freshly uploaded photo, stores
// every detected face, and auto-links faces that match a known person's
// embedding above the configured similarity threshold. Detection failures are
// logged and swallowed so an upload never fails because the face service is down.
func DetectAndStoreFaces(userID string, photo *db.Photo) int {
	client := vendors.GetFaceClient()
	if !client.Available() {
		return 0
	}

	detected, err := client.DetectFaces(photo.Filepath)
	if err != nil {
		log.Error().Err(err).Str("photoId", photo.ID).Msg("face detection failed")
		return 0
	}
	if len(detected) == 0 {
		return 0
	}

	known, err := db.ListNamedEmbeddings(userID)
	if err != nil {
		log.Error().Err(err).Msg("failed to load known embeddings")
		known = nil
	}
	threshold := config.Get().FaceMatchThreshold

	stored := 0
	for _, d := range detected {
		face := &db.Face{
			PhotoID:    photo.ID,
			X:          d.X,
			Y:          d.Y,
			Width:      d.Width,
			Height:     d.Height,
			Confidence: d.Confidence,
		}

		if personID := bestMatch(d.Embedding, known, threshold); personID != "" {
			face.PersonID = personID
		}

		if err := db.CreateFace(face, d.Embedding, d.Model); err != nil {
			log.Error().Err(err).Str("photoId", photo.ID).Msg("failed to store face")
			continue
		}
		stored++
	}

	if stored > 0 {
		log.Info().
			Str("photoId", photo.ID).
			Int("faces", stored).
			Msg("faces detected")
	}
	return stored
}

// RemoveFiles deletes a photo's original file and its thumbnail
func RemoveFiles(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", path).Msg("failed to remove photo file")
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	thumb := filepath.Join(filepath.Dir(path), "thumbs", base+".jpg")
	if err := os.Remove(thumb); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", thumb).Msg("failed to remove thumbnail")
	}
}

// bestMatch returns the person whose stored embedding is most similar to the
// candidate, or "" when nothing clears the threshold.
func bestMatch(embedding []float64, known []db.FaceEmbedding, threshold float64) string {
	if len(embedding) == 0 {
		return ""
	}

	bestPerson := ""
	bestScore := threshold
	for _, k := range known {
		score := vendors.CosineSimilarity(embedding, k.Vector)
		if score >= bestScore {
			bestScore = score
			bestPerson = k.PersonID
		}
	}
	return bestPerson
}
