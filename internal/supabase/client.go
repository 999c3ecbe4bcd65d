package supabase

import (
	"fmt"
	"strings"

	"github.com/supabase-community/supabase-go"
)

// NewClient connects to a Supabase project. Only its storage API is used.
func NewClient(projectURL, key string) (*supabase.Client, error) {
	client, err := supabase.NewClient(strings.TrimSuffix(projectURL, "/"), key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return client, nil
}
