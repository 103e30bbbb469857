package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

func GetProfileID(ctx *gin.Context) (uint64, error) {
	var err error

	profileIDStr := ctx.Param("profile_id")

	if profileIDStr == "" {
		return 0, errors.New("Profile ID not found")
	}

	profileID, err := strconv.ParseUint(profileIDStr, 10, 32)

	if err != nil {
		return 0, errors.New("Invalid Profile ID")
	}

	return profileID, nil
}

func GetConnectionID(ctx *gin.Context) (uint64, error) {
	var err error

	connectionIDStr := ctx.Param("connection_id")

	if connectionIDStr == "" {
		return 0, errors.New("Connection ID not found")
	}

	connectionID, err := strconv.ParseUint(connectionIDStr, 10, 32)

	if err != nil {
		return 0, errors.New("Invalid Connection ID")
	}

	return connectionID, nil
}

func GetPhotoID(ctx *gin.Context) (uint64, error) {
	var err error

	photoIDStr := ctx.Param("photo_id")

	if photoIDStr == "" {
		return 0, errors.New("Photo ID not found")
	}

	photoID, err := strconv.ParseUint(photoIDStr, 10, 32)

	if err != nil {
		return 0, errors.New("Invalid Photo ID")
	}

	return photoID, nil
}
