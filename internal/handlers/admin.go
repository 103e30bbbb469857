package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/chatgptnotes/vivahgmc.com/db"
	"github.com/chatgptnotes/vivahgmc.com/internal/models"
	"github.com/chatgptnotes/vivahgmc.com/internal/types"
	"github.com/chatgptnotes/vivahgmc.com/internal/utils"
	"github.com/gin-gonic/gin"
)

type AdminDashboardResponse struct {
	TotalProfiles    int64 `json:"total_profiles"`
	PendingApprovals int64 `json:"pending_approvals"`
	ApprovedProfiles int64 `json:"approved_profiles"`
	RejectedProfiles int64 `json:"rejected_profiles"`
	TotalConnections int64 `json:"total_connections"`
}

type RejectProfileRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func GetAdminDashboard(ctx *gin.Context) {
	var response AdminDashboardResponse

	counts := []struct {
		status string
		dest   *int64
	}{
		{types.ProfileStatusPending, &response.PendingApprovals},
		{types.ProfileStatusApproved, &response.ApprovedProfiles},
		{types.ProfileStatusRejected, &response.RejectedProfiles},
	}

	if err := db.DB.Model(&models.Profile{}).Count(&response.TotalProfiles).Error; err != nil {
		log.Printf("Failed to count profiles: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	for _, c := range counts {
		if err := db.DB.Model(&models.Profile{}).Where("status = ?", c.status).Count(c.dest).Error; err != nil {
			log.Printf("Failed to count %s profiles: %v", c.status, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
			return
		}
	}

	err := db.DB.Model(&models.ConnectionRequest{}).
		Where("status = ?", types.ConnectionStatusAccepted).
		Count(&response.TotalConnections).Error

	if err != nil {
		log.Printf("Failed to count connections: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// ListPendingProfiles returns profiles awaiting review, oldest first.
func ListPendingProfiles(ctx *gin.Context) {
	var profiles []models.Profile

	err := db.DB.
		Where("status = ?", types.ProfileStatusPending).
		Order("created_at ASC").
		Find(&profiles).Error

	if err != nil {
		log.Printf("Failed to list pending profiles: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve profiles"})
		return
	}

	ctx.JSON(http.StatusOK, profiles)
}

func ApproveProfile(ctx *gin.Context) {
	reviewProfile(ctx, types.ProfileStatusApproved, "")
}

func RejectProfile(ctx *gin.Context) {
	var body RejectProfileRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Rejection reason is required"})
		return
	}

	reviewProfile(ctx, types.ProfileStatusRejected, strings.TrimSpace(body.Reason))
}

// reviewProfile fires the pending -> approved|rejected transition. The update
// is guarded on the current status so a profile can be reviewed exactly once;
// a concurrent or repeated review matches zero rows and reports a conflict.
func reviewProfile(ctx *gin.Context, newStatus, reason string) {
	profileID, err := utils.GetProfileID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var profile models.Profile

	if err := db.DB.First(&profile, profileID).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	result := db.DB.Model(&models.Profile{}).
		Where("id = ? AND status = ?", profileID, types.ProfileStatusPending).
		Updates(map[string]interface{}{
			"status":           newStatus,
			"rejection_reason": reason,
		})

	if result.Error != nil {
		log.Printf("Failed to review profile %d: %v", profileID, result.Error)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Profile is not pending review"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Profile " + newStatus})
}
