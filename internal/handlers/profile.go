package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/chatgptnotes/vivahgmc.com/db"
	"github.com/chatgptnotes/vivahgmc.com/internal/models"
	"github.com/chatgptnotes/vivahgmc.com/internal/types"
	"github.com/chatgptnotes/vivahgmc.com/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SaveProfileRequest struct {
	UserType string `json:"user_type" binding:"required,oneof=parent child"`

	ChildName       string `json:"child_name" binding:"required"`
	ChildAge        int    `json:"child_age" binding:"required,gte=18,lte=100"`
	ChildHeight     string `json:"child_height"`
	ChildProfession string `json:"child_profession" binding:"required"`
	ChildWorkplace  string `json:"child_workplace"`
	ChildEducation  string `json:"child_education" binding:"required"`
	ChildLocation   string `json:"child_location" binding:"required"`

	ParentName string `json:"parent_name" binding:"required"`
	BatchYear  int    `json:"batch_year" binding:"required,gte=1950,lte=2035"`
	ParentCity string `json:"parent_city"`

	PrefAgeMin     int    `json:"pref_age_min" binding:"omitempty,gte=18,lte=100"`
	PrefAgeMax     int    `json:"pref_age_max" binding:"omitempty,gte=18,lte=100"`
	PrefProfession string `json:"pref_profession"`
}

// SaveMyProfile upserts the caller's profile, keyed by the account. Every
// owner edit goes back through admin review, so status is forced to pending
// and any previous rejection reason is cleared.
func SaveMyProfile(ctx *gin.Context) {
	var body SaveProfileRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if body.PrefAgeMin != 0 && body.PrefAgeMax != 0 && body.PrefAgeMin > body.PrefAgeMax {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Preferred age range is invalid"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	preferences, err := json.Marshal(types.PartnerPreferences{
		AgeMin:     body.PrefAgeMin,
		AgeMax:     body.PrefAgeMax,
		Profession: strings.TrimSpace(body.PrefProfession),
	})

	if err != nil {
		log.Printf("Failed to marshal preferences: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var profile models.Profile

	err = db.DB.Where("user_id = ?", userID).First(&profile).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when fetching profile: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve profile"})
		return
	}

	created := errors.Is(err, gorm.ErrRecordNotFound)

	profile.UserID = userID
	profile.UserType = body.UserType
	profile.Status = types.ProfileStatusPending
	profile.ChildName = strings.TrimSpace(body.ChildName)
	profile.ChildAge = body.ChildAge
	profile.ChildHeight = strings.TrimSpace(body.ChildHeight)
	profile.ChildProfession = strings.TrimSpace(body.ChildProfession)
	profile.ChildWorkplace = strings.TrimSpace(body.ChildWorkplace)
	profile.ChildEducation = strings.TrimSpace(body.ChildEducation)
	profile.ChildLocation = strings.TrimSpace(body.ChildLocation)
	profile.ParentName = strings.TrimSpace(body.ParentName)
	profile.BatchYear = body.BatchYear
	profile.ParentCity = strings.TrimSpace(body.ParentCity)
	profile.Preferences = datatypes.JSON(preferences)
	profile.RejectionReason = ""

	if err := db.DB.Save(&profile).Error; err != nil {
		log.Printf("Failed to save profile: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save profile"})
		return
	}

	status := http.StatusOK

	if created {
		status = http.StatusCreated
	}

	ctx.JSON(status, profile)
}

func GetMyProfile(ctx *gin.Context) {
	profile, err := utils.GetCurrentProfile(ctx)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		} else {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		}
		return
	}

	if err := db.DB.Preload("Photos").First(&profile, profile.ID).Error; err != nil {
		log.Printf("Failed to load profile photos: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve profile"})
		return
	}

	ctx.JSON(http.StatusOK, profile)
}

// BrowseProfiles lists approved profiles other than the caller's own, with
// optional min_age/max_age/profession/location filters.
func BrowseProfiles(ctx *gin.Context) {
	myProfile, err := utils.GetCurrentProfile(ctx)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Create your profile before browsing"})
		} else {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		}
		return
	}

	query := db.DB.
		Where("status = ?", types.ProfileStatusApproved).
		Where("id != ?", myProfile.ID)

	if minAge, err := strconv.Atoi(ctx.Query("min_age")); err == nil && minAge > 0 {
		query = query.Where("child_age >= ?", minAge)
	}

	if maxAge, err := strconv.Atoi(ctx.Query("max_age")); err == nil && maxAge > 0 {
		query = query.Where("child_age <= ?", maxAge)
	}

	if profession := strings.TrimSpace(ctx.Query("profession")); profession != "" {
		query = query.Where("LOWER(child_profession) LIKE ?", "%"+strings.ToLower(profession)+"%")
	}

	if location := strings.TrimSpace(ctx.Query("location")); location != "" {
		query = query.Where("LOWER(child_location) LIKE ?", "%"+strings.ToLower(location)+"%")
	}

	var profiles []models.Profile

	if err := query.Order("updated_at DESC").Find(&profiles).Error; err != nil {
		log.Printf("Failed to browse profiles: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve profiles"})
		return
	}

	profileIDs := make([]uint, 0, len(profiles))
	for _, profile := range profiles {
		profileIDs = append(profileIDs, profile.ID)
	}

	primaryPhotos := primaryPhotoURLs(profileIDs)

	response := make([]types.ProfileSummary, 0, len(profiles))

	for _, profile := range profiles {
		response = append(response, types.ProfileSummary{
			ID:              profile.ID,
			ChildName:       profile.ChildName,
			ChildAge:        profile.ChildAge,
			ChildProfession: profile.ChildProfession,
			ChildLocation:   profile.ChildLocation,
			PrimaryPhotoURL: primaryPhotos[profile.ID],
		})
	}

	ctx.JSON(http.StatusOK, response)
}

// GetProfile returns one approved profile in full, or the caller's own
// regardless of status.
func GetProfile(ctx *gin.Context) {
	profileID, err := utils.GetProfileID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var profile models.Profile

	if err := db.DB.Preload("Photos").First(&profile, profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		} else {
			log.Printf("Failed to retrieve profile: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve profile"})
		}
		return
	}

	if profile.Status != types.ProfileStatusApproved && profile.UserID != userID {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	ctx.JSON(http.StatusOK, profile)
}

// primaryPhotoURLs maps profile id -> primary photo URL for the given set.
func primaryPhotoURLs(profileIDs []uint) map[uint]string {
	urls := make(map[uint]string)

	if len(profileIDs) == 0 {
		return urls
	}

	var photos []models.ProfilePhoto

	if err := db.DB.Where("profile_id IN ? AND is_primary = ?", profileIDs, true).Find(&photos).Error; err != nil {
		log.Printf("Failed to load primary photos: %v", err)
		return urls
	}

	for _, photo := range photos {
		urls[photo.ProfileID] = photo.PhotoURL
	}

	return urls
}
