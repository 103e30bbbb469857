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

type CreateConnectionRequest struct {
	ToProfileID uint `json:"to_profile_id" binding:"required"`
}

type RespondConnectionRequest struct {
	Action string `json:"action" binding:"required"`
}

type ConnectionSummary struct {
	ID          uint                 `json:"id"`
	Status      string               `json:"status"`
	UpdatedAt   time.Time            `json:"updated_at"`
	Profile     types.ProfileSummary `json:"profile"`
	UnreadCount int64                `json:"unread_count"`
}

// RequestConnection creates a pending request from the caller's profile to
// another approved profile.
func RequestConnection(ctx *gin.Context) {
	var body CreateConnectionRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	myProfile, err := utils.GetCurrentProfile(ctx)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Create your profile before sending requests"})
		} else {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		}
		return
	}

	if myProfile.Status != types.ProfileStatusApproved {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Your profile must be approved before sending requests"})
		return
	}

	if err := connections.ValidateNewRequest(myProfile.ID, body.ToProfileID); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var target models.Profile

	if err := db.DB.First(&target, body.ToProfileID).Error; err != nil || target.Status != types.ProfileStatusApproved {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	// One active request per pair, in either direction. A declined pair may
	// be re-requested.
	var existing models.ConnectionRequest

	err = db.DB.
		Where("((from_profile_id = ? AND to_profile_id = ?) OR (from_profile_id = ? AND to_profile_id = ?)) AND status IN ?",
			myProfile.ID, target.ID, target.ID, myProfile.ID,
			[]string{types.ConnectionStatusPending, types.ConnectionStatusAccepted}).
		First(&existing).Error

	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "A connection with this profile already exists"})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when checking existing connection: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create connection request"})
		return
	}

	connection := models.ConnectionRequest{
		FromProfileID: myProfile.ID,
		ToProfileID:   target.ID,
		Status:        types.ConnectionStatusPending,
	}

	if err := db.DB.Create(&connection).Error; err != nil {
		log.Printf("Failed to create connection request: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create connection request"})
		return
	}

	ctx.JSON(http.StatusCreated, connection)
}

// ListIncomingRequests returns pending requests addressed to the caller, each
// with the requester's profile summary.
func ListIncomingRequests(ctx *gin.Context) {
	myProfile, err := utils.GetCurrentProfile(ctx)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		} else {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		}
		return
	}

	var requests []models.ConnectionRequest

	err = db.DB.
		Where("to_profile_id = ? AND status = ?", myProfile.ID, types.ConnectionStatusPending).
		Order("created_at DESC").
		Find(&requests).Error

	if err != nil {
		log.Printf("Failed to list incoming requests: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve requests"})
		return
	}

	fromIDs := make([]uint, 0, len(requests))
	for _, request := range requests {
		fromIDs = append(fromIDs, request.FromProfileID)
	}

	summaries := profileSummaries(fromIDs)

	response := make([]ConnectionSummary, 0, len(requests))

	for _, request := range requests {
		summary, ok := summaries[request.FromProfileID]
		if !ok {
			// Requester profile gone; skip rather than fail the list.
			continue
		}

		response = append(response, ConnectionSummary{
			ID:        request.ID,
			Status:    request.Status,
			UpdatedAt: request.UpdatedAt,
			Profile:   summary,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

// RespondToConnection fires the pending -> accepted|declined transition.
// Recipient only, once only; the guarded update turns a lost race into a
// conflict instead of a silent overwrite.
func RespondToConnection(ctx *gin.Context) {
	var body RespondConnectionRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	newStatus, err := connections.NextStatus(body.Action)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	connectionID, err := utils.GetConnectionID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	myProfile, err := utils.GetCurrentProfile(ctx)

	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	var connection models.ConnectionRequest

	if err := db.DB.First(&connection, connectionID).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Connection request not found"})
		return
	}

	if err := connections.CanRespond(connection, myProfile.ID); err != nil {
		switch {
		case errors.Is(err, connections.ErrNotParticipant):
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Connection request not found"})
		case errors.Is(err, connections.ErrNotRecipient):
			ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		}
		return
	}

	result := db.DB.Model(&models.ConnectionRequest{}).
		Where("id = ? AND status = ?", connection.ID, types.ConnectionStatusPending).
		Update("status", newStatus)

	if result.Error != nil {
		log.Printf("Failed to respond to connection %d: %v", connection.ID, result.Error)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update connection request"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Connection request has already been resolved"})
		return
	}

	connection.Status = newStatus

	ctx.JSON(http.StatusOK, connection)
}

// ListConnections returns the caller's accepted connections, newest activity
// first, each resolved to the counterpart's profile summary. Connections
// whose counterpart profile cannot be resolved are skipped.
func ListConnections(ctx *gin.Context) {
	myProfile, err := utils.GetCurrentProfile(ctx)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		} else {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		}
		return
	}

	var accepted []models.ConnectionRequest

	err = db.DB.
		Where("status = ? AND (from_profile_id = ? OR to_profile_id = ?)",
			types.ConnectionStatusAccepted, myProfile.ID, myProfile.ID).
		Order("updated_at DESC").
		Find(&accepted).Error

	if err != nil {
		log.Printf("Failed to list connections: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve connections"})
		return
	}

	counterpartIDs := make([]uint, 0, len(accepted))
	connectionIDs := make([]uint, 0, len(accepted))

	for _, connection := range accepted {
		connectionIDs = append(connectionIDs, connection.ID)
		if other, ok := connections.CounterpartID(connection, myProfile.ID); ok {
			counterpartIDs = append(counterpartIDs, other)
		}
	}

	summaries := profileSummaries(counterpartIDs)
	unread := unreadCounts(connectionIDs, myProfile.ID)

	response := make([]ConnectionSummary, 0, len(accepted))

	for _, connection := range accepted {
		other, ok := connections.CounterpartID(connection, myProfile.ID)
		if !ok {
			continue
		}

		summary, ok := summaries[other]
		if !ok {
			continue
		}

		response = append(response, ConnectionSummary{
			ID:          connection.ID,
			Status:      connection.Status,
			UpdatedAt:   connection.UpdatedAt,
			Profile:     summary,
			UnreadCount: unread[connection.ID],
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func profileSummaries(profileIDs []uint) map[uint]types.ProfileSummary {
	summaries := make(map[uint]types.ProfileSummary)

	if len(profileIDs) == 0 {
		return summaries
	}

	var profiles []models.Profile

	if err := db.DB.Where("id IN ?", profileIDs).Find(&profiles).Error; err != nil {
		log.Printf("Failed to load profile summaries: %v", err)
		return summaries
	}

	primaryPhotos := primaryPhotoURLs(profileIDs)

	for _, profile := range profiles {
		summaries[profile.ID] = types.ProfileSummary{
			ID:              profile.ID,
			ChildName:       profile.ChildName,
			ChildAge:        profile.ChildAge,
			ChildProfession: profile.ChildProfession,
			ChildLocation:   profile.ChildLocation,
			PrimaryPhotoURL: primaryPhotos[profile.ID],
		}
	}

	return summaries
}

// unreadCounts maps connection id -> number of unread messages authored by
// the counterpart.
func unreadCounts(connectionIDs []uint, myProfileID uint) map[uint]int64 {
	counts := make(map[uint]int64)

	if len(connectionIDs) == 0 {
		return counts
	}

	var rows []struct {
		ConnectionID uint
		Total        int64
	}

	err := db.DB.Model(&models.Message{}).
		Select("connection_id, COUNT(*) AS total").
		Where("connection_id IN ? AND sender_profile_id != ? AND read = ?", connectionIDs, myProfileID, false).
		Group("connection_id").
		Scan(&rows).Error

	if err != nil {
		log.Printf("Failed to count unread messages: %v", err)
		return counts
	}

	for _, row := range rows {
		counts[row.ConnectionID] = row.Total
	}

	return counts
}
