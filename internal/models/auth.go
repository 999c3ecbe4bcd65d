package models

import "time"

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType,omitempty"`
	Role        string `json:"role"`
}

type CurrentUser struct {
	Username string `json:"username,omitempty"`
	Role     string `json:"role"`
}

// CachedCategories is a category list and the time it was fetched.
type CachedCategories struct {
	Items     []string  `json:"items"`
	FetchedAt time.Time `json:"fetchedAt"`
}
