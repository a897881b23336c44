package model

import "encoding/json"

// Envelope is the response wrapper every content API endpoint returns.
// Data is left raw so callers can decode it into the right entity type.
type Envelope struct {
	Data    json.RawMessage `json:"data,omitempty"`
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
}

// LoginResult is the payload of a successful /auth/login call.
type LoginResult struct {
	User         User   `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RefreshResult is the payload of a successful /auth/refresh call.
type RefreshResult struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"` // seconds
}
