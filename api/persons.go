package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drishyamitra/drishyamitra/db"
	"github.com/drishyamitra/drishyamitra/log"
)

// ListPersons handles GET /api/persons
func ListPersons(c *gin.Context) {
	persons, err := db.ListPersons(currentUserID(c))
	if err != nil {
		log.Error().Err(err).Msg("person listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load people"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"persons": persons})
}

// GetPerson handles GET /api/persons/:id, returning the person with their photos
func GetPerson(c *gin.Context) {
	userID := currentUserID(c)
	person, err := db.GetPerson(userID, c.Param("id"))
	if err != nil {
		log.Error().Err(err).Msg("person lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load person"})
		return
	}
	if person == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Person not found"})
		return
	}

	result, total, err := db.SearchPhotos(userID, db.PhotoFilter{PersonID: person.ID}, 0, 0)
	if err != nil {
		log.Error().Err(err).Msg("person photos lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load person"})
		return
	}
	if result == nil {
		result = []db.Photo{}
	}

	c.JSON(http.StatusOK, gin.H{"person": person, "photos": result, "total": total})
}

type renamePersonRequest struct {
	Name string `json:"name" binding:"required"`
}

// RenamePerson handles PUT /api/persons/:id
func RenamePerson(c *gin.Context) {
	var req renamePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}

	ok, err := db.RenamePerson(currentUserID(c), c.Param("id"), req.Name)
	if err != nil {
		log.Error().Err(err).Msg("person rename failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rename person"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Person not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Person renamed"})
}

// DeletePerson handles DELETE /api/persons/:id. The person's faces go back
// to unassigned; photos are untouched.
func DeletePerson(c *gin.Context) {
	ok, err := db.DeletePerson(currentUserID(c), c.Param("id"))
	if err != nil {
		log.Error().Err(err).Msg("person delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete person"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Person not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Person deleted"})
}
