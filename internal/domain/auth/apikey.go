// Package auth holds the API key model used to guard the admin catalog
// endpoints. Shopper-facing routes are anonymous; shopper identity is a
// transport concern (cookies), not a data-model one.
package auth

import "context"

// APIKeyInfo holds the identity and permission data for a validated API key.
type APIKeyInfo struct {
	ID      string
	KeyHash string
	Name    string
	Scopes  []string
}

// Repository provides lookup of API keys by their HMAC-SHA256 hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}
