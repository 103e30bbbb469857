package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/chatgptnotes/vivahgmc.com/db"
	"github.com/chatgptnotes/vivahgmc.com/internal/connections"
	"github.com/chatgptnotes/vivahgmc.com/internal/models"
	"github.com/chatgptnotes/vivahgmc.com/internal/types"
	"github.com/chatgptnotes/vivahgmc.com/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// GetThread returns the connection's messages in stable chronological order
// (created_at, ties broken by insert order) and then marks the counterpart's
// unread messages as read. The mark-as-read is best effort: a failure is
// logged and retried implicitly the next time the thread is opened.
func GetThread(ctx *gin.Context) {
	connection, myProfile, ok := loadThreadConnection(ctx)

	if !ok {
		return
	}

	// Most recent rows first, then reversed, so the cap drops the oldest
	// history rather than the newest.
	var messages []models.Message

	err := db.DB.
		Where("connection_id = ?", connection.ID).
		Order("created_at DESC, id DESC").
		Limit(types.ThreadHistoryLimit).
		Find(&messages).Error

	if err != nil {
		log.Printf("Failed to load messages for connection %d: %v", connection.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve messages"})
		return
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	result := db.DB.Model(&models.Message{}).
		Where("connection_id = ? AND sender_profile_id != ? AND read = ?", connection.ID, myProfile.ID, false).
		Update("read", true)

	if result.Error != nil {
		log.Printf("Failed to mark messages read for connection %d: %v", connection.ID, result.Error)
	}

	ctx.JSON(http.StatusOK, messages)
}

// SendMessage appends one message to an accepted connection's thread and
// fans it out to the thread's websocket subscribers. A failed insert changes
// nothing: no row, no broadcast, and the client keeps the content for retry.
func SendMessage(ctx *gin.Context) {
	var body SendMessageRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Message content is required"})
		return
	}

	connection, myProfile, ok := loadThreadConnection(ctx)

	if !ok {
		return
	}

	content, err := connections.ValidateSend(connection, myProfile.ID, body.Content)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message := models.Message{
		ConnectionID:    connection.ID,
		SenderProfileID: myProfile.ID,
		Content:         content,
		Read:            false,
	}

	if err := db.DB.Create(&message).Error; err != nil {
		log.Printf("Failed to send message on connection %d: %v", connection.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	// Surface the new activity in connection ordering.
	if err := db.DB.Model(&models.ConnectionRequest{}).
		Where("id = ?", connection.ID).
		Update("updated_at", time.Now()).Error; err != nil {
		log.Printf("Failed to touch connection %d: %v", connection.ID, err)
	}

	BroadcastNewMessage(connection.ID, message)

	ctx.JSON(http.StatusCreated, message)
}

// loadThreadConnection resolves the caller's profile and the connection from
// the path, enforcing the participant + accepted preconditions shared by all
// thread operations. It writes the error response itself and reports ok=false.
func loadThreadConnection(ctx *gin.Context) (models.ConnectionRequest, models.Profile, bool) {
	connectionID, err := utils.GetConnectionID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.ConnectionRequest{}, models.Profile{}, false
	}

	myProfile, err := utils.GetCurrentProfile(ctx)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		} else {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		}
		return models.ConnectionRequest{}, models.Profile{}, false
	}

	var connection models.ConnectionRequest

	if err := db.DB.First(&connection, connectionID).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Connection not found"})
		return models.ConnectionRequest{}, models.Profile{}, false
	}

	if !connections.IsParticipant(connection, myProfile.ID) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Connection not found"})
		return models.ConnectionRequest{}, models.Profile{}, false
	}

	if connection.Status != types.ConnectionStatusAccepted {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": connections.ErrNotAccepted.Error()})
		return models.ConnectionRequest{}, models.Profile{}, false
	}

	return connection, myProfile, true
}
