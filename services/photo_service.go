package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"github.com/kendall-kelly/laundry-api/utils"
)

// photoKeyPrefix is where order photos live in the bucket
const photoKeyPrefix = "orders/photos/"

// PhotoService stores the photos customers attach to an order
type PhotoService interface {
	// UploadPhoto validates and stores a photo, returning its storage key
	UploadPhoto(ctx context.Context, fileHeader *multipart.FileHeader) (string, error)

	// GetPhotoURL returns a time-limited link to a stored photo
	GetPhotoURL(ctx context.Context, key string) (string, error)

	// DeletePhoto removes a stored photo
	DeletePhoto(ctx context.Context, key string) error
}

// S3PhotoService implements PhotoService on top of S3
type S3PhotoService struct {
	store S3Interface
}

var photoServiceInstance PhotoService

// InitPhotoService initializes the photo service with an S3 backend
func InitPhotoService(store S3Interface) PhotoService {
	photoServiceInstance = NewS3PhotoService(store)
	return photoServiceInstance
}

// NewS3PhotoService creates a photo service over store
func NewS3PhotoService(store S3Interface) *S3PhotoService {
	return &S3PhotoService{store: store}
}

// GetPhotoService returns the initialized photo service, or nil when storage is off
func GetPhotoService() PhotoService {
	return photoServiceInstance
}

// SetPhotoService sets the photo service instance (primarily for testing)
func SetPhotoService(service PhotoService) {
	photoServiceInstance = service
}

// PhotoKey returns the storage key for a photo id (the last path segment of a key)
func PhotoKey(photoID string) string {
	return photoKeyPrefix + photoID
}

// IsPhotoKey reports whether key names an uploaded order photo
func IsPhotoKey(key string) bool {
	return strings.HasPrefix(key, photoKeyPrefix) && len(key) > len(photoKeyPrefix)
}

// UploadPhoto implements PhotoService
func (s *S3PhotoService) UploadPhoto(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidatePhotoFile(fileHeader); err != nil {
		return "", err
	}
	contentType, _ := utils.ContentTypeFor(fileHeader.Filename)

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, utils.MaxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if len(content) > utils.MaxFileSize {
		return "", &utils.FileUploadError{Code: "FILE_TOO_LARGE", Message: "File size exceeds maximum allowed size of 10 MB"}
	}

	key := photoKeyPrefix + uuid.NewString() + utils.PhotoExtension(fileHeader.Filename)
	if err := s.store.PutObject(ctx, key, contentType, content); err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}
	return key, nil
}

// GetPhotoURL implements PhotoService
func (s *S3PhotoService) GetPhotoURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	url, err := s.store.GetPresignedURL(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to generate photo URL: %w", err)
	}
	return url, nil
}

// DeletePhoto implements PhotoService
func (s *S3PhotoService) DeletePhoto(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if !IsPhotoKey(key) {
		return fmt.Errorf("refusing to delete %q: not an order photo", key)
	}
	if err := s.store.DeleteObject(ctx, key); err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}
