package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine) {
	api := r.Group("/api")

	api.GET("/health", Health)

	// Auth routes (public)
	api.POST("/auth/signup", Signup)
	api.POST("/auth/login", Login)

	// Everything below requires a valid token
	protected := api.Group("", AuthRequired())

	protected.GET("/auth/me", Me)

	// Photo routes - static routes before :id
	protected.POST("/photos/upload", UploadPhoto)
	protected.POST("/photos/analyze", AnalyzePhoto)
	protected.POST("/photos/batch-delete", BatchDeletePhotos)
	protected.GET("/photos/duplicates", ListDuplicates)
	protected.GET("/photos", ListPhotos)
	protected.GET("/photos/:id", GetPhoto)
	protected.GET("/photos/:id/faces", ListPhotoFaces)
	protected.POST("/photos/:id/favorite", ToggleFavorite)
	protected.DELETE("/photos/:id", DeletePhoto)

	// Face routes
	protected.POST("/faces/:id/assign", AssignFace)
	protected.POST("/faces/:id/unassign", UnassignFace)

	// Person routes
	protected.GET("/persons", ListPersons)
	protected.GET("/persons/:id", GetPerson)
	protected.PUT("/persons/:id", RenamePerson)
	protected.DELETE("/persons/:id", DeletePerson)

	// Folder routes
	protected.GET("/folders", ListFolders)
	protected.POST("/folders", CreateFolder)
	protected.GET("/folders/:id", GetFolder)
	protected.GET("/folders/:id/export", ExportFolder)
	protected.POST("/folders/:id/photos", AddFolderPhotos)
	protected.DELETE("/folders/:id/photos", RemoveFolderPhotos)
	protected.DELETE("/folders/:id", DeleteFolder)

	// Categories and tags
	protected.GET("/categories", ListCategories)
	protected.GET("/tags", ListTags)

	// Stats and dashboard
	protected.GET("/stats", GetStats)
	protected.GET("/dashboard", GetDashboard)

	// Chat assistant
	protected.POST("/chat", Chat)
	protected.POST("/chat/delete/confirm", ConfirmDelete)
	protected.POST("/chat/delete/cancel", CancelDelete)
}

// Health handles GET /api/health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
