package auth

import (
	"fmt"
	"time"
)

// IsValid checks if credentials are usable (present and not expired)
func IsValid(creds *Credentials) bool {
	if creds == nil || creds.APIKey == "" {
		return false
	}

	// Service keys from the environment carry no expiry; the control plane
	// validates the key itself
	if creds.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Before(creds.ExpiresAt)
}

// RequireAPIKey returns the API key or a login hint when it is missing
func (c *Credentials) RequireAPIKey() (string, error) {
	if c == nil || c.APIKey == "" {
		return "", fmt.Errorf("not authenticated: set GRAPHDECK_API_KEY or run 'graphdeck login'")
	}
	return c.APIKey, nil
}
