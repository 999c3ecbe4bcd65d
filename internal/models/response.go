package models

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// SessionResponse describes the signed-in operator and what the UI may offer.
type SessionResponse struct {
	Authenticated bool            `json:"authenticated"`
	Role          string          `json:"role"`
	Permissions   map[string]bool `json:"permissions"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}
