package localstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"catalog-console/internal/models"

	jsoniter "github.com/json-iterator/go"
	bolt "go.etcd.io/bbolt"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	sessionBucket = []byte("session")
	cacheBucket   = []byte("cache")
	categoriesKey = []byte("categories")
)

// Store is the console's local key/value file. It keeps the access token
// and cached backend lookups.
type Store struct {
	db         *bolt.DB
	sessionKey []byte
}

func Open(path, sessionName string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{sessionBucket, cacheBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize local store: %w", err)
	}

	return &Store{db: db, sessionKey: []byte(sessionName)}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) LoadToken(_ context.Context) (string, error) {
	var token string
	err := s.db.View(func(tx *bolt.Tx) error {
		token = string(tx.Bucket(sessionBucket).Get(s.sessionKey))
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return token, nil
}

func (s *Store) SaveToken(_ context.Context, token string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionBucket).Put(s.sessionKey, []byte(token))
	})
	if err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	return nil
}

func (s *Store) ClearToken(_ context.Context) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionBucket).Delete(s.sessionKey)
	})
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// LoadCategories returns the cached category list, or nil when nothing is cached.
func (s *Store) LoadCategories(_ context.Context) (*models.CachedCategories, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(cacheBucket).Get(categoriesKey); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var cached models.CachedCategories
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("failed to decode cached categories: %w", err)
	}
	return &cached, nil
}

func (s *Store) SaveCategories(_ context.Context, cached models.CachedCategories) error {
	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cacheBucket).Put(categoriesKey, data)
	})
	if err != nil {
		return fmt.Errorf("failed to write categories: %w", err)
	}
	return nil
}
