package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
)

func integrationCommand() *cli.Command {
	return &cli.Command{
		Name:  "integration",
		Usage: "Inspect source-control integrations",
		Subcommands: []*cli.Command{
			integrationListCommand(),
			integrationReposCommand(),
			integrationFindCommand(),
		},
	}
}

func integrationListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List source-control integrations in the workspace",
		Flags: []cli.Flag{
			apiURLFlag(),
			&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
		},
		Action: func(c *cli.Context) error {
			client, err := newControlPlaneClient(c)
			if err != nil {
				return err
			}

			integrations, err := client.AllIntegrations(c.Context)
			if err != nil {
				return err
			}

			if c.Bool("json") {
				data, _ := json.MarshalIndent(integrations, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			if len(integrations) == 0 {
				fmt.Println("No integrations configured")
				return nil
			}
			for _, integration := range integrations {
				if integration.Name != "" {
					fmt.Printf("%s  %s\n", integration.ID, integration.Name)
				} else {
					fmt.Println(integration.ID)
				}
			}
			return nil
		},
	}
}

func integrationReposCommand() *cli.Command {
	return &cli.Command{
		Name:      "repos",
		Usage:     "List repositories reachable through an integration",
		ArgsUsage: "<integration-id>",
		Flags: []cli.Flag{
			apiURLFlag(),
			&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: graphdeck integration repos <integration-id>")
			}

			client, err := newControlPlaneClient(c)
			if err != nil {
				return err
			}

			repos, err := client.AllRepositories(c.Context, c.Args().First())
			if err != nil {
				return err
			}

			if c.Bool("json") {
				data, _ := json.MarshalIndent(repos, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			for _, repo := range repos {
				fmt.Printf("%s/%s\n", repo.Owner, repo.Name)
			}
			return nil
		},
	}
}

func integrationFindCommand() *cli.Command {
	return &cli.Command{
		Name:      "find",
		Usage:     "Find the integration with access to a repository",
		ArgsUsage: "<owner/repo>",
		Flags: []cli.Flag{
			apiURLFlag(),
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: graphdeck integration find <owner/repo>")
			}
			owner, name, ok := strings.Cut(c.Args().First(), "/")
			if !ok || owner == "" || name == "" {
				return fmt.Errorf("repository must be in owner/repo form")
			}

			client, err := newControlPlaneClient(c)
			if err != nil {
				return err
			}

			integrationID, err := client.FindIntegrationForRepo(c.Context, owner, name)
			if err != nil {
				return err
			}

			fmt.Println(integrationID)
			return nil
		},
	}
}
