package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/drishyamitra/drishyamitra/chat"
)

type chatRequest struct {
	Message string      `json:"message"`
	History []chat.Turn `json:"history"`
}

type confirmDeleteRequest struct {
	PhotoIDs []string `json:"photo_ids"`
}

// Chat handles POST /api/chat: one assistant turn
func Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	reply := chat.GetService().HandleMessage(c.Request.Context(), currentUserID(c), req.Message, req.History)
	c.JSON(http.StatusOK, reply)
}

// ConfirmDelete handles POST /api/chat/delete/confirm: executes the staged
// deletion. The reported count is what was actually removed.
func ConfirmDelete(c *gin.Context) {
	var req confirmDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	deleted, err := chat.GetService().ConfirmDeletion(currentUserID(c), req.PhotoIDs)
	if err != nil {
		if errors.Is(err, chat.ErrNoPendingDeletion) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No deletion is awaiting confirmation"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete photos"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       fmt.Sprintf("Deleted %d photos.", deleted),
		"deleted_count": deleted,
	})
}

// CancelDelete handles POST /api/chat/delete/cancel: discards the staged
// deletion without touching the library.
func CancelDelete(c *gin.Context) {
	if err := chat.GetService().CancelDeletion(currentUserID(c)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No deletion is awaiting confirmation"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deletion cancelled. Your photos are safe."})
}
