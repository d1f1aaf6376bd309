package auth

import "time"

// Credentials holds the API key and scoping identifiers for the GraphDeck
// control plane
type Credentials struct {
	// APIKey authenticates every control plane call (x-api-key header)
	APIKey string `json:"api_key"`

	// WorkspaceID scopes requests to a workspace
	WorkspaceID string `json:"workspace_id,omitempty"`

	// OrganizationID scopes requests to an organization; some write
	// operations require it
	OrganizationID string `json:"organization_id,omitempty"`

	// Email identifies the logged-in user, when the key was minted via login
	Email string `json:"email,omitempty"`

	// CreatedAt and ExpiresAt bound session keys minted via login; service
	// keys from the environment have no expiry recorded here
	CreatedAt time.Time `json:"created_at,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}
