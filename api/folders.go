package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mholt/archives"

	"github.com/drishyamitra/drishyamitra/db"
	"github.com/drishyamitra/drishyamitra/log"
	"github.com/drishyamitra/drishyamitra/utils"
)

type createFolderRequest struct {
	Name     string   `json:"name" binding:"required"`
	PhotoIDs []string `json:"photo_ids"`
}

type folderPhotosRequest struct {
	PhotoIDs []string `json:"photo_ids" binding:"required"`
}

// CreateFolder handles POST /api/folders
func CreateFolder(c *gin.Context) {
	var req createFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}

	folder, err := db.CreateFolder(currentUserID(c), req.Name, req.PhotoIDs)
	if err != nil {
		log.Error().Err(err).Msg("folder creation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create folder"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"folder": folder})
}

// ListFolders handles GET /api/folders
func ListFolders(c *gin.Context) {
	folders, err := db.ListFolders(currentUserID(c))
	if err != nil {
		log.Error().Err(err).Msg("folder listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load folders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"folders": folders})
}

// GetFolder handles GET /api/folders/:id, returning the folder with its photos
func GetFolder(c *gin.Context) {
	folder, err := db.GetFolder(currentUserID(c), c.Param("id"))
	if err != nil {
		log.Error().Err(err).Msg("folder lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load folder"})
		return
	}
	if folder == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"folder": folder})
}

// AddFolderPhotos handles POST /api/folders/:id/photos
func AddFolderPhotos(c *gin.Context) {
	var req folderPhotosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo_ids is required"})
		return
	}

	added, err := db.AddPhotosToFolder(currentUserID(c), c.Param("id"), req.PhotoIDs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
			return
		}
		log.Error().Err(err).Msg("adding folder photos failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update folder"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"added_count": added})
}

// RemoveFolderPhotos handles DELETE /api/folders/:id/photos. Photos are only
// unlinked, never deleted.
func RemoveFolderPhotos(c *gin.Context) {
	var req folderPhotosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo_ids is required"})
		return
	}

	removed, err := db.RemovePhotosFromFolder(currentUserID(c), c.Param("id"), req.PhotoIDs)
	if err != nil {
		log.Error().Err(err).Msg("removing folder photos failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update folder"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed_count": removed})
}

// DeleteFolder handles DELETE /api/folders/:id
func DeleteFolder(c *gin.Context) {
	ok, err := db.DeleteFolder(currentUserID(c), c.Param("id"))
	if err != nil {
		log.Error().Err(err).Msg("folder delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete folder"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Folder deleted"})
}

// ExportFolder handles GET /api/folders/:id/export, streaming the folder's
// photos as a zip archive of the original files.
func ExportFolder(c *gin.Context) {
	folder, err := db.GetFolder(currentUserID(c), c.Param("id"))
	if err != nil {
		log.Error().Err(err).Msg("folder lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export folder"})
		return
	}
	if folder == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
		return
	}
	if len(folder.Photos) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Folder is empty"})
		return
	}

	// Map disk paths to archive entry names, deduplicating collisions
	entries := make(map[string]string, len(folder.Photos))
	seen := make(map[string]bool, len(folder.Photos))
	for _, photo := range folder.Photos {
		name := utils.SanitizeFilename(photo.OriginalFilename)
		for i := 2; seen[name]; i++ {
			name = fmt.Sprintf("%d-%s", i, utils.SanitizeFilename(photo.OriginalFilename))
		}
		seen[name] = true
		entries[photo.Filepath] = name
	}

	files, err := archives.FilesFromDisk(c.Request.Context(), nil, entries)
	if err != nil {
		log.Error().Err(err).Msg("failed to collect files for export")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export folder"})
		return
	}

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s.zip"`, utils.SanitizeFilename(folder.Name)))

	if err := (archives.Zip{}).Archive(c.Request.Context(), c.Writer, files); err != nil {
		// Headers are already sent; all we can do is log
		log.Error().Err(err).Str("folderId", folder.ID).Msg("folder export failed mid-stream")
	}
}
