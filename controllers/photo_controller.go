package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/laundry-api/logger"
	"github.com/kendall-kelly/laundry-api/services"
	"github.com/kendall-kelly/laundry-api/utils"
)

// photoFormField is the multipart field holding the upload
const photoFormField = "photo"

func photoService(c *gin.Context) services.PhotoService {
	svc := services.GetPhotoService()
	if svc == nil {
		respondError(c, http.StatusServiceUnavailable, "PHOTO_STORAGE_DISABLED", "Photo uploads are not available", nil)
	}
	return svc
}

// UploadPhoto handles POST /api/v1/photos. The returned key goes into the
// selection's photos; the per-order limit is checked when the order is validated.
func UploadPhoto(c *gin.Context) {
	svc := photoService(c)
	if svc == nil {
		return
	}

	fileHeader, err := c.FormFile(photoFormField)
	if err != nil {
		respondError(c, http.StatusBadRequest, "NO_FILE", "A photo file is required in the \"photo\" field", nil)
		return
	}

	ctx := c.Request.Context()
	key, err := svc.UploadPhoto(ctx, fileHeader)
	if err != nil {
		var fileErr *utils.FileUploadError
		if errors.As(err, &fileErr) {
			respondError(c, http.StatusBadRequest, fileErr.Code, fileErr.Message, nil)
			return
		}
		logger.Get().Error(ctx, "failed to upload photo", err)
		respondError(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to upload photo", nil)
		return
	}

	url, err := svc.GetPhotoURL(ctx, key)
	if err != nil {
		// the photo is stored; the client can still attach it by key
		logger.Get().Error(logger.Get().WithField(ctx, "photo_key", key), "failed to sign photo URL", err)
	}

	respondOK(c, http.StatusCreated, gin.H{
		"key": key,
		"url": url,
	})
}

// DeletePhoto handles DELETE /api/v1/photos/:photoId
func DeletePhoto(c *gin.Context) {
	svc := photoService(c)
	if svc == nil {
		return
	}

	photoID := c.Param("photoId")
	if photoID == "" || strings.ContainsAny(photoID, `/\`) || strings.Contains(photoID, "..") {
		respondError(c, http.StatusBadRequest, "INVALID_PHOTO_ID", "Invalid photo id", nil)
		return
	}

	ctx := c.Request.Context()
	if err := svc.DeletePhoto(ctx, services.PhotoKey(photoID)); err != nil {
		logger.Get().Error(ctx, "failed to delete photo", err)
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete photo", nil)
		return
	}
	c.Status(http.StatusNoContent)
}
