package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/urfave/cli/v2"
)

var (
	// Build-time variables set via ldflags
	// Example: go build -ldflags "-X main.Version=1.0.0"
	Version        = "v0.3.0"
	DefaultAPIURL  = "https://api.graphdeck.dev"
	DefaultAuthURL = "https://auth.graphdeck.dev"
)

func main() {
	app := &cli.App{
		Name:    "graphdeck",
		Usage:   "Deploy and manage GraphDeck agent-graph services",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (trace, debug, info, warn, error)",
				Value:   "warn",
				EnvVars: []string{"GRAPHDECK_LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			// Workflow commands
			runCommand(),

			// Resource commands
			integrationCommand(),
			deploymentCommand(),

			// Authentication commands
			loginCommand(),
			logoutCommand(),
			whoamiCommand(),
		},
		Before: func(c *cli.Context) error {
			level := hclog.LevelFromString(c.String("log-level"))
			logger := hclog.New(&hclog.LoggerOptions{
				Name:  "graphdeck",
				Level: level,
				Color: hclog.AutoColor,
			})
			hclog.SetDefault(logger)
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
