package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/drishyamitra/drishyamitra/config"
	"github.com/drishyamitra/drishyamitra/db"
	"github.com/drishyamitra/drishyamitra/log"
	"github.com/drishyamitra/drishyamitra/photos"
	"github.com/drishyamitra/drishyamitra/utils"
	"github.com/drishyamitra/drishyamitra/vendors"
)

// UploadPhoto handles POST /api/photos/upload (multipart).
// Fields: photo (file, required), categories (comma-separated), tags (comma-separated).
func UploadPhoto(c *gin.Context) {
	userID := currentUserID(c)
	cfg := config.Get()

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No photo file provided"})
		return
	}

	if !utils.IsAllowedImage(fileHeader.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file type"})
		return
	}
	if fileHeader.Size > cfg.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File is too large"})
		return
	}

	userDir := filepath.Join(cfg.UploadDir, userID)
	if err := os.MkdirAll(userDir, 0755); err != nil {
		log.Error().Err(err).Msg("failed to create upload directory")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}

	filename := utils.DeduplicateFilename(userDir, utils.SanitizeFilename(fileHeader.Filename))
	fullPath := filepath.Join(userDir, filename)

	if err := c.SaveUploadedFile(fileHeader, fullPath); err != nil {
		log.Error().Err(err).Msg("failed to save upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}

	hash, err := utils.HashFile(fullPath)
	if err != nil {
		log.Warn().Err(err).Str("path", fullPath).Msg("failed to hash upload")
	}

	photo := &db.Photo{
		UserID:           userID,
		Filename:         filename,
		OriginalFilename: fileHeader.Filename,
		Filepath:         fullPath,
		MimeType:         utils.DetectMimeType(filename),
		FileSize:         fileHeader.Size,
		FileHash:         hash,
	}

	categories := splitList(c.PostForm("categories"))
	tags := splitList(c.PostForm("tags"))

	if err := db.CreatePhoto(photo, categories, tags); err != nil {
		os.Remove(fullPath)
		log.Error().Err(err).Msg("failed to create photo record")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}

	if _, err := photos.WriteThumbnail(fullPath); err != nil {
		log.Warn().Err(err).Str("photoId", photo.ID).Msg("thumbnail generation failed")
	}

	photo.FacesCount = photos.DetectAndStoreFaces(userID, photo)

	duplicateOf, _ := db.FindPhotosByHash(userID, hash)

	c.JSON(http.StatusCreated, gin.H{
		"photo":        photo,
		"is_duplicate": hash != "" && len(duplicateOf) > 1,
	})
}

// AnalyzePhoto handles POST /api/photos/analyze — pre-upload inspection.
// The file is written to a temp location, analyzed, and discarded; nothing
// is stored. Faces, a duplicate flag, and suggested tags come back so the
// client can prefill the upload form.
func AnalyzePhoto(c *gin.Context) {
	userID := currentUserID(c)

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No photo file provided"})
		return
	}
	if !utils.IsAllowedImage(fileHeader.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file type"})
		return
	}
	if fileHeader.Size > config.Get().MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File is too large"})
		return
	}

	tmp, err := os.CreateTemp("", "analyze-*"+filepath.Ext(fileHeader.Filename))
	if err != nil {
		log.Error().Err(err).Msg("failed to create temp file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Analysis failed"})
		return
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveUploadedFile(fileHeader, tmpPath); err != nil {
		log.Error().Err(err).Msg("failed to save upload for analysis")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Analysis failed"})
		return
	}

	faces := []gin.H{}
	if client := vendors.GetFaceClient(); client.Available() {
		detected, err := client.DetectFaces(tmpPath)
		if err != nil {
			log.Warn().Err(err).Msg("face detection failed during analysis")
		}
		for _, d := range detected {
			faces = append(faces, gin.H{
				"x": d.X, "y": d.Y, "width": d.Width, "height": d.Height,
				"confidence": d.Confidence,
			})
		}
	}

	isDuplicate := false
	if hash, err := utils.HashFile(tmpPath); err == nil && hash != "" {
		if existing, err := db.FindPhotosByHash(userID, hash); err == nil && len(existing) > 0 {
			isDuplicate = true
		}
	}

	suggested := []string{}
	if oai := vendors.GetOpenAIClient(); oai.Available() {
		description := fmt.Sprintf("Filename: %s. Detected faces: %d.", fileHeader.Filename, len(faces))
		tags, err := oai.GenerateTags(c.Request.Context(), description)
		if err != nil {
			log.Warn().Err(err).Msg("tag suggestion failed during analysis")
		} else if tags != nil {
			suggested = tags
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"faces":          faces,
		"is_duplicate":   isDuplicate,
		"suggested_tags": suggested,
	})
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ListPhotos handles GET /api/photos with filter query params
func ListPhotos(c *gin.Context) {
	filter := db.PhotoFilter{
		Search:         c.Query("search"),
		PersonName:     c.Query("person"),
		PersonID:       c.Query("person_id"),
		Category:       c.Query("category"),
		Tag:            c.Query("tag"),
		FavoritesOnly:  c.Query("favorites") == "true",
		DuplicatesOnly: c.Query("duplicates") == "true",
		UnknownFaces:   c.Query("unknown_faces") == "true",
		DateFrom:       c.Query("from"),
		DateTo:         c.Query("to"),
		RelativeTime:   c.Query("relative_time"),
	}
	if year, err := strconv.Atoi(c.Query("year")); err == nil {
		filter.Year = year
	}

	limit := intQuery(c, "limit", 60)
	offset := intQuery(c, "offset", 0)

	result, total, err := db.SearchPhotos(currentUserID(c), filter, limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("photo search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load photos"})
		return
	}
	if result == nil {
		result = []db.Photo{}
	}

	c.JSON(http.StatusOK, gin.H{"photos": result, "total": total})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	if v, err := strconv.Atoi(c.Query(name)); err == nil && v >= 0 {
		return v
	}
	return fallback
}

// GetPhoto handles GET /api/photos/:id
func GetPhoto(c *gin.Context) {
	photo, err := db.GetPhoto(currentUserID(c), c.Param("id"))
	if err != nil {
		log.Error().Err(err).Msg("photo lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load photo"})
		return
	}
	if photo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"photo": photo})
}

// ToggleFavorite handles POST /api/photos/:id/favorite
func ToggleFavorite(c *gin.Context) {
	photo, err := db.ToggleFavorite(currentUserID(c), c.Param("id"))
	if err != nil {
		log.Error().Err(err).Msg("favorite toggle failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update photo"})
		return
	}
	if photo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"photo": photo})
}

// DeletePhoto handles DELETE /api/photos/:id (direct gallery delete, no
// chat confirmation involved)
func DeletePhoto(c *gin.Context) {
	deleted, err := db.DeletePhotosBatch(currentUserID(c), []string{c.Param("id")})
	if err != nil {
		log.Error().Err(err).Msg("photo delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete photo"})
		return
	}
	if len(deleted) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
		return
	}
	for _, d := range deleted {
		photos.RemoveFiles(d.Filepath)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Photo deleted"})
}

type batchDeleteRequest struct {
	PhotoIDs []string `json:"photo_ids" binding:"required"`
}

// BatchDeletePhotos handles POST /api/photos/batch-delete (direct gallery
// multi-select delete)
func BatchDeletePhotos(c *gin.Context) {
	var req batchDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.PhotoIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo_ids is required"})
		return
	}

	deleted, err := db.DeletePhotosBatch(currentUserID(c), req.PhotoIDs)
	if err != nil {
		log.Error().Err(err).Msg("batch delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete photos"})
		return
	}
	for _, d := range deleted {
		photos.RemoveFiles(d.Filepath)
	}
	c.JSON(http.StatusOK, gin.H{"deleted_count": len(deleted)})
}

// ListDuplicates handles GET /api/photos/duplicates
func ListDuplicates(c *gin.Context) {
	groups, err := db.ListDuplicateGroups(currentUserID(c))
	if err != nil {
		log.Error().Err(err).Msg("duplicate listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load duplicates"})
		return
	}
	if groups == nil {
		groups = []db.DuplicateGroup{}
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}
