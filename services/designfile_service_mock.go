package services

import (
	"fmt"
	"mime/multipart"
	"sync"

	"github.com/parth-garg/fabworks-api/utils"
)

// MockDesignFileService is a mock implementation of DesignFileService for testing
type MockDesignFileService struct {
	uploadedFiles map[string][]byte // map of file key to file content
	mu            sync.RWMutex
}

// NewMockDesignFileService creates a new mock design file service
func NewMockDesignFileService() *MockDesignFileService {
	return &MockDesignFileService{
		uploadedFiles: make(map[string][]byte),
	}
}

// SetAsMockForTesting sets this mock as the global design file service instance for testing
func (m *MockDesignFileService) SetAsMockForTesting() {
	SetDesignFileService(m)
}

// UploadDesignFile simulates uploading a design file
func (m *MockDesignFileService) UploadDesignFile(fileHeader *multipart.FileHeader) (string, error) {
	// Validate the file
	if err := utils.ValidateDesignFile(fileHeader); err != nil {
		return "", err
	}

	// Open and read the file
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// Read file content
	content := make([]byte, fileHeader.Size)
	_, err = file.Read(content)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	// Generate mock file key
	fileKey := fmt.Sprintf("design-files/mock_%s", fileHeader.Filename)

	// Store in mock storage
	m.mu.Lock()
	m.uploadedFiles[fileKey] = content
	m.mu.Unlock()

	return fileKey, nil
}

// GetDesignFileURL simulates generating a URL for a design file
func (m *MockDesignFileService) GetDesignFileURL(fileKey string) (string, error) {
	if fileKey == "" {
		return "", nil
	}

	// Check if file exists in mock storage
	m.mu.RLock()
	_, exists := m.uploadedFiles[fileKey]
	m.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("design file not found in mock storage: %s", fileKey)
	}

	// Return a mock URL
	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", fileKey), nil
}

// DeleteDesignFile simulates deleting a design file
func (m *MockDesignFileService) DeleteDesignFile(fileKey string) error {
	if fileKey == "" {
		return nil
	}

	m.mu.Lock()
	delete(m.uploadedFiles, fileKey)
	m.mu.Unlock()

	return nil
}

// FileExists checks if a design file exists in mock storage
func (m *MockDesignFileService) FileExists(fileKey string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.uploadedFiles[fileKey]
	return exists
}

// Clear removes all design files from mock storage
func (m *MockDesignFileService) Clear() {
	m.mu.Lock()
	m.uploadedFiles = make(map[string][]byte)
	m.mu.Unlock()
}
