package main

import (
	"github.com/hashicorp/go-hclog"
	"github.com/urfave/cli/v2"

	"github.com/graphdeck/graphdeck-cli/pkg/auth"
	"github.com/graphdeck/graphdeck-cli/pkg/controlplane"
)

// apiURLFlag is shared by every command that talks to the control plane
func apiURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "api-url",
		Usage:   "GraphDeck control plane URL",
		Value:   DefaultAPIURL,
		EnvVars: []string{"GRAPHDECK_API_URL"},
	}
}

// newControlPlaneClient builds a client from stored credentials and the
// command's flags
func newControlPlaneClient(c *cli.Context) (*controlplane.Client, error) {
	creds, err := auth.LoadCredentials()
	if err != nil {
		return nil, err
	}
	apiKey, err := creds.RequireAPIKey()
	if err != nil {
		return nil, err
	}

	opts := []controlplane.Option{
		controlplane.WithLogger(hclog.Default().Named("controlplane")),
	}
	if creds.WorkspaceID != "" {
		opts = append(opts, controlplane.WithWorkspaceID(creds.WorkspaceID))
	}
	if creds.OrganizationID != "" {
		opts = append(opts, controlplane.WithOrganizationID(creds.OrganizationID))
	}

	return controlplane.NewClient(c.String("api-url"), apiKey, opts...)
}
