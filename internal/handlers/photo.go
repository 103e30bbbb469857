package handlers

import (
	"bytes"
	"errors"
	"log"
	"net/http"

	"github.com/chatgptnotes/vivahgmc.com/db"
	"github.com/chatgptnotes/vivahgmc.com/internal/models"
	"github.com/chatgptnotes/vivahgmc.com/internal/storage"
	"github.com/chatgptnotes/vivahgmc.com/internal/types"
	"github.com/chatgptnotes/vivahgmc.com/internal/utils"
	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PhotoStore is wired in main before the router starts serving.
var PhotoStore storage.PhotoStore

// Photos wider or taller than this are downscaled before storage.
const maxPhotoDimension = 1600

func ListMyPhotos(ctx *gin.Context) {
	myProfile, ok := currentProfileOr404(ctx)

	if !ok {
		return
	}

	var photos []models.ProfilePhoto

	err := db.DB.
		Where("profile_id = ?", myProfile.ID).
		Order("uploaded_at ASC, id ASC").
		Find(&photos).Error

	if err != nil {
		log.Printf("Failed to list photos: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve photos"})
		return
	}

	ctx.JSON(http.StatusOK, photos)
}

// UploadPhoto accepts one multipart image. The photo-count cap is checked
// before any blob write, so a rejected sixth upload leaves neither a row nor
// a blob behind. The first photo of a profile becomes primary automatically.
func UploadPhoto(ctx *gin.Context) {
	myProfile, ok := currentProfileOr404(ctx)

	if !ok {
		return
	}

	file, err := ctx.FormFile("photo")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Photo file is required"})
		return
	}

	if file.Size > types.MaxPhotoSizeBytes {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Photo is too large (max 5MB)"})
		return
	}

	var count int64

	if err := db.DB.Model(&models.ProfilePhoto{}).Where("profile_id = ?", myProfile.ID).Count(&count).Error; err != nil {
		log.Printf("Failed to count photos: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload photo"})
		return
	}

	if count >= types.MaxPhotosPerProfile {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Maximum 5 photos allowed"})
		return
	}

	src, err := file.Open()

	if err != nil {
		log.Printf("Failed to open uploaded file: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload photo"})
		return
	}
	defer src.Close()

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "File is not a valid image"})
		return
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxPhotoDimension || bounds.Dy() > maxPhotoDimension {
		img = imaging.Fit(img, maxPhotoDimension, maxPhotoDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer

	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		log.Printf("Failed to encode photo: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload photo"})
		return
	}

	key := uuid.New().String() + ".jpg"

	if err := PhotoStore.Save(key, &buf); err != nil {
		log.Printf("Failed to store photo blob: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload photo"})
		return
	}

	photo := models.ProfilePhoto{
		ProfileID: myProfile.ID,
		PhotoURL:  PhotoStore.URL(key),
		ObjectKey: key,
		IsPrimary: count == 0,
	}

	if err := db.DB.Create(&photo).Error; err != nil {
		log.Printf("Failed to save photo record: %v", err)
		// Keep blob and row in step.
		if err := PhotoStore.Delete(key); err != nil {
			log.Printf("Failed to clean up orphan blob %s: %v", key, err)
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload photo"})
		return
	}

	ctx.JSON(http.StatusCreated, photo)
}

// SetPrimaryPhoto reassigns the primary flag. Clear-all and set-one run in a
// single transaction, so the exactly-one-primary invariant is never observable
// as violated.
func SetPrimaryPhoto(ctx *gin.Context) {
	myProfile, ok := currentProfileOr404(ctx)

	if !ok {
		return
	}

	photoID, err := utils.GetPhotoID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		var photo models.ProfilePhoto

		if err := tx.Where("id = ? AND profile_id = ?", photoID, myProfile.ID).First(&photo).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.ProfilePhoto{}).
			Where("profile_id = ?", myProfile.ID).
			Update("is_primary", false).Error; err != nil {
			return err
		}

		return tx.Model(&models.ProfilePhoto{}).
			Where("id = ?", photo.ID).
			Update("is_primary", true).Error
	})

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
		} else {
			log.Printf("Failed to set primary photo: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update photo"})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Primary photo updated"})
}

// DeletePhoto removes the row and its blob. If the deleted photo was primary
// and others remain, the oldest remaining photo is promoted in the same
// transaction, keeping the exactly-one-primary invariant.
func DeletePhoto(ctx *gin.Context) {
	myProfile, ok := currentProfileOr404(ctx)

	if !ok {
		return
	}

	photoID, err := utils.GetPhotoID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var objectKey string

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		var photo models.ProfilePhoto

		if err := tx.Where("id = ? AND profile_id = ?", photoID, myProfile.ID).First(&photo).Error; err != nil {
			return err
		}

		objectKey = photo.ObjectKey

		if err := tx.Delete(&photo).Error; err != nil {
			return err
		}

		if !photo.IsPrimary {
			return nil
		}

		var oldest models.ProfilePhoto

		err := tx.Where("profile_id = ?", myProfile.ID).
			Order("uploaded_at ASC, id ASC").
			First(&oldest).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}

		if err != nil {
			return err
		}

		return tx.Model(&models.ProfilePhoto{}).
			Where("id = ?", oldest.ID).
			Update("is_primary", true).Error
	})

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
		} else {
			log.Printf("Failed to delete photo: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete photo"})
		}
		return
	}

	// The row is gone; a stranded blob only wastes space and is logged.
	if err := PhotoStore.Delete(objectKey); err != nil {
		log.Printf("Failed to delete photo blob %s: %v", objectKey, err)
	}

	ctx.Status(http.StatusNoContent)
}

func currentProfileOr404(ctx *gin.Context) (models.Profile, bool) {
	myProfile, err := utils.GetCurrentProfile(ctx)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Create your profile before managing photos"})
		} else {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		}
		return models.Profile{}, false
	}

	return myProfile, true
}
