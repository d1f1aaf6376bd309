// Package auth manages GraphDeck credentials: the control plane API key and
// the workspace/organization identifiers every call is scoped with.
// Credentials come from the environment first, then from the local
// credentials file written by `graphdeck login`.
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	configDirName   = ".graphdeck"
	credentialsFile = "credentials.json"

	apiKeyEnvVar    = "GRAPHDECK_API_KEY"
	workspaceEnvVar = "GRAPHDECK_WORKSPACE_ID"
	orgEnvVar       = "GRAPHDECK_ORG_ID"
)

// GetConfigDir returns the path to the GraphDeck configuration directory
// (~/.graphdeck)
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDirName), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist.
// Directory is created with 0700 permissions (owner only).
func EnsureConfigDir() error {
	dir, err := GetConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// SaveCredentials writes credentials to the configuration file with 0600
// permissions
func SaveCredentials(creds *Credentials) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	dir, _ := GetConfigDir()
	path := filepath.Join(dir, credentialsFile)

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// LoadCredentials reads credentials from the environment or the config file.
// Priority: GRAPHDECK_API_KEY env var (with optional workspace/org env vars)
// over ~/.graphdeck/credentials.json. Returns a login hint when neither is
// available.
func LoadCredentials() (*Credentials, error) {
	if key := os.Getenv(apiKeyEnvVar); key != "" {
		return &Credentials{
			APIKey:         key,
			WorkspaceID:    os.Getenv(workspaceEnvVar),
			OrganizationID: os.Getenv(orgEnvVar),
		}, nil
	}

	dir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, credentialsFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("not authenticated: set %s or run 'graphdeck login'", apiKeyEnvVar)
		}
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file %s: %w", path, err)
	}

	// Environment scoping overrides the stored file
	if ws := os.Getenv(workspaceEnvVar); ws != "" {
		creds.WorkspaceID = ws
	}
	if org := os.Getenv(orgEnvVar); org != "" {
		creds.OrganizationID = org
	}

	return &creds, nil
}

// ClearCredentials removes the stored credentials file. Missing file is not
// an error.
func ClearCredentials() error {
	dir, err := GetConfigDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, credentialsFile)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
