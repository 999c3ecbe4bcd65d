package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"catalog-console/internal/models"

	"github.com/gosimple/slug"
	storage "github.com/supabase-community/storage-go"
	"go.uber.org/zap"
)

// ObjectStorage is the part of the storage API the preview store needs.
type ObjectStorage interface {
	UploadFile(bucketID, relativePath string, data io.Reader, fileOptions ...storage.FileOptions) (storage.FileUploadResponse, error)
	RemoveFile(bucketID string, paths []string) ([]storage.FileUploadResponse, error)
}

// PreviewStore stages not-yet-submitted images in a public bucket so the
// console can show them before the backend has them.
type PreviewStore struct {
	storage ObjectStorage
	bucket  string
	baseURL string

	mu    sync.Mutex
	paths map[string]string
}

func NewPreviewStore(objects ObjectStorage, projectURL, bucket string) *PreviewStore {
	return &PreviewStore{
		storage: objects,
		bucket:  bucket,
		baseURL: strings.TrimSuffix(projectURL, "/"),
		paths:   make(map[string]string),
	}
}

func (s *PreviewStore) Stage(_ context.Context, tempID string, file models.ImageFile) (string, error) {
	storagePath := ObjectPath(tempID, file.Name)

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	upsert := true
	_, err := s.storage.UploadFile(s.bucket, storagePath, bytes.NewReader(file.Data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload preview: %w", err)
	}

	s.mu.Lock()
	s.paths[tempID] = storagePath
	s.mu.Unlock()

	zap.L().Debug("staged image preview", zap.String("temp_id", tempID), zap.String("path", storagePath))
	return s.PublicURL(storagePath), nil
}

func (s *PreviewStore) Release(_ context.Context, tempID string) error {
	s.mu.Lock()
	storagePath, ok := s.paths[tempID]
	delete(s.paths, tempID)
	s.mu.Unlock()
	if !ok {
		return nil
	}

	if _, err := s.storage.RemoveFile(s.bucket, []string{storagePath}); err != nil {
		return fmt.Errorf("failed to remove preview: %w", err)
	}
	return nil
}

func (s *PreviewStore) PublicURL(storagePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, storagePath)
}

// ObjectPath is previews/<slugged file name>-<tempId><ext>.
func ObjectPath(tempID, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	base := slug.Make(strings.TrimSuffix(fileName, path.Ext(fileName)))
	if base == "" {
		base = "image"
	}
	return fmt.Sprintf("previews/%s-%s%s", base, tempID, ext)
}
