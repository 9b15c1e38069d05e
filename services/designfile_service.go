package services

import (
	"fmt"
	"mime/multipart"

	"github.com/parth-garg/fabworks-api/utils"
)

// DesignFileService handles storage of the drawing files attached to an
// order: the required 2D draft and the optional STEP model.
type DesignFileService interface {
	// UploadDesignFile validates and uploads a design file, returns the storage key
	UploadDesignFile(fileHeader *multipart.FileHeader) (string, error)

	// GetDesignFileURL generates a URL for accessing an uploaded design file
	GetDesignFileURL(fileKey string) (string, error)

	// DeleteDesignFile removes a design file from storage
	DeleteDesignFile(fileKey string) error
}

// S3DesignFileService implements DesignFileService using AWS S3 for storage
type S3DesignFileService struct {
	s3Service S3Interface
}

var designFileServiceInstance DesignFileService

// InitDesignFileService initializes the design file service with S3 backend
func InitDesignFileService(s3Service S3Interface) DesignFileService {
	designFileServiceInstance = &S3DesignFileService{
		s3Service: s3Service,
	}
	return designFileServiceInstance
}

// GetDesignFileService returns the initialized design file service instance
func GetDesignFileService() DesignFileService {
	return designFileServiceInstance
}

// SetDesignFileService sets the design file service instance (primarily for testing)
func SetDesignFileService(service DesignFileService) {
	designFileServiceInstance = service
}

// UploadDesignFile validates and uploads a design file to S3
func (s *S3DesignFileService) UploadDesignFile(fileHeader *multipart.FileHeader) (string, error) {
	// Validate the file
	if err := utils.ValidateDesignFile(fileHeader); err != nil {
		return "", err
	}

	// Upload to S3
	s3Key, err := s.s3Service.UploadFile(fileHeader)
	if err != nil {
		return "", fmt.Errorf("failed to upload design file: %w", err)
	}

	return s3Key, nil
}

// GetDesignFileURL generates a presigned URL for accessing a design file
func (s *S3DesignFileService) GetDesignFileURL(fileKey string) (string, error) {
	if fileKey == "" {
		return "", nil
	}

	url, err := s.s3Service.GetPresignedURL(fileKey)
	if err != nil {
		return "", fmt.Errorf("failed to generate design file URL: %w", err)
	}

	return url, nil
}

// DeleteDesignFile deletes a design file from S3
func (s *S3DesignFileService) DeleteDesignFile(fileKey string) error {
	if fileKey == "" {
		return nil
	}

	if err := s.s3Service.DeleteFile(fileKey); err != nil {
		return fmt.Errorf("failed to delete design file: %w", err)
	}

	return nil
}
