package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drishyamitra/drishyamitra/db"
	"github.com/drishyamitra/drishyamitra/log"
)

// ListCategories handles GET /api/categories
func ListCategories(c *gin.Context) {
	categories, err := db.ListCategories()
	if err != nil {
		log.Error().Err(err).Msg("category listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// ListTags handles GET /api/tags, returning the user's tags with usage counts
func ListTags(c *gin.Context) {
	tags, err := db.ListTagsForUser(currentUserID(c))
	if err != nil {
		log.Error().Err(err).Msg("tag listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load tags"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}
