package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"catalog-console/internal/models"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const categoriesCacheKey = "categories"

// SessionStore keeps the console's access token and cached lookups in
// Postgres, for deployments where several console instances share a session.
type SessionStore struct {
	db   *sql.DB
	name string
}

func NewSessionStore(db *sql.DB, sessionName string) *SessionStore {
	return &SessionStore{db: db, name: sessionName}
}

func (s *SessionStore) LoadToken(ctx context.Context) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx,
		"SELECT access_token FROM console_sessions WHERE name = $1",
		s.name,
	).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

func (s *SessionStore) SaveToken(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO console_sessions (name, access_token, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET access_token = EXCLUDED.access_token, updated_at = NOW()
	`, s.name, token)
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (s *SessionStore) ClearToken(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM console_sessions WHERE name = $1", s.name); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

func (s *SessionStore) LoadCategories(ctx context.Context) (*models.CachedCategories, error) {
	var payload []byte
	var cached models.CachedCategories
	err := s.db.QueryRowContext(ctx,
		"SELECT payload, fetched_at FROM console_cache WHERE key = $1",
		categoriesCacheKey,
	).Scan(&payload, &cached.FetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	if err := json.Unmarshal(payload, &cached.Items); err != nil {
		return nil, fmt.Errorf("failed to decode cached categories: %w", err)
	}
	return &cached, nil
}

func (s *SessionStore) SaveCategories(ctx context.Context, cached models.CachedCategories) error {
	payload, err := json.Marshal(cached.Items)
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO console_cache (key, payload, fetched_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, fetched_at = EXCLUDED.fetched_at
	`, categoriesCacheKey, string(payload), cached.FetchedAt)
	if err != nil {
		return fmt.Errorf("failed to save categories: %w", err)
	}
	return nil
}
