package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drishyamitra/drishyamitra/db"
	"github.com/drishyamitra/drishyamitra/log"
)

// ListPhotoFaces handles GET /api/photos/:id/faces
func ListPhotoFaces(c *gin.Context) {
	photo, err := db.GetPhoto(currentUserID(c), c.Param("id"))
	if err != nil {
		log.Error().Err(err).Msg("photo lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load faces"})
		return
	}
	if photo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"faces": photo.Faces})
}

type assignFaceRequest struct {
	Name string `json:"name" binding:"required"`
}

// AssignFace handles POST /api/faces/:id/assign, naming a detected face.
// The person is created on first use of the name.
func AssignFace(c *gin.Context) {
	var req assignFaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}

	person, err := db.AssignFaceToPerson(currentUserID(c), c.Param("id"), req.Name)
	if err != nil {
		log.Error().Err(err).Msg("face assignment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign face"})
		return
	}
	if person == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Face not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"person": person})
}

// UnassignFace handles POST /api/faces/:id/unassign
func UnassignFace(c *gin.Context) {
	err := db.UnassignFace(currentUserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Face not found"})
			return
		}
		log.Error().Err(err).Msg("face unassignment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unassign face"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Face unassigned"})
}
