package preview

import (
	"context"
	"strings"
	"sync"

	"catalog-console/internal/models"
)

// MemoryStore keeps staged files in process and serves them under
// <baseURL>/previews/<tempId>.
type MemoryStore struct {
	baseURL string

	mu    sync.RWMutex
	files map[string]models.ImageFile
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		files:   make(map[string]models.ImageFile),
	}
}

func (s *MemoryStore) Stage(_ context.Context, tempID string, file models.ImageFile) (string, error) {
	s.mu.Lock()
	s.files[tempID] = file
	s.mu.Unlock()
	return s.baseURL + "/previews/" + tempID, nil
}

func (s *MemoryStore) Release(_ context.Context, tempID string) error {
	s.mu.Lock()
	delete(s.files, tempID)
	s.mu.Unlock()
	return nil
}

// Get returns a staged file.
func (s *MemoryStore) Get(tempID string) (models.ImageFile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[tempID]
	return f, ok
}
