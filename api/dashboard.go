package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drishyamitra/drishyamitra/db"
	"github.com/drishyamitra/drishyamitra/log"
)

// GetStats handles GET /api/stats
func GetStats(c *gin.Context) {
	stats, err := db.GetLibraryStats(currentUserID(c))
	if err != nil {
		log.Error().Err(err).Msg("stats aggregation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// GetDashboard handles GET /api/dashboard: stats plus recent photos and the
// people and folder previews the home screen renders.
func GetDashboard(c *gin.Context) {
	userID := currentUserID(c)

	stats, err := db.GetLibraryStats(userID)
	if err != nil {
		log.Error().Err(err).Msg("stats aggregation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	recent, _, err := db.SearchPhotos(userID, db.PhotoFilter{}, 12, 0)
	if err != nil {
		log.Error().Err(err).Msg("recent photos lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}
	if recent == nil {
		recent = []db.Photo{}
	}

	persons, err := db.ListPersons(userID)
	if err != nil {
		log.Error().Err(err).Msg("person listing failed")
		persons = []db.Person{}
	}
	if len(persons) > 8 {
		persons = persons[:8]
	}

	folders, err := db.ListFolders(userID)
	if err != nil {
		log.Error().Err(err).Msg("folder listing failed")
		folders = []db.Folder{}
	}
	if len(folders) > 6 {
		folders = folders[:6]
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":         stats,
		"recent_photos": recent,
		"persons":       persons,
		"folders":       folders,
	})
}
