package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/graphdeck/graphdeck-cli/internal/workflow"
)

func deploymentCommand() *cli.Command {
	return &cli.Command{
		Name:  "deployment",
		Usage: "Manage GraphDeck deployments",
		Subcommands: []*cli.Command{
			deploymentListCommand(),
			deploymentGetCommand(),
			deploymentURLCommand(),
			deploymentRevisionsCommand(),
			deploymentLogsCommand(),
			deploymentDeleteCommand(),
		},
	}
}

func deploymentListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List deployments",
		Flags: []cli.Flag{
			apiURLFlag(),
			&cli.StringFlag{Name: "name", Usage: "Filter by name substring"},
			&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
		},
		Action: func(c *cli.Context) error {
			client, err := newControlPlaneClient(c)
			if err != nil {
				return err
			}

			deployments, err := client.AllDeployments(c.Context, c.String("name"))
			if err != nil {
				return err
			}

			if c.Bool("json") {
				data, _ := json.MarshalIndent(deployments, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			if len(deployments) == 0 {
				fmt.Println("No deployments found")
				return nil
			}
			for _, dep := range deployments {
				fmt.Printf("%s  %-30s %s\n", dep.ID, dep.Name, dep.Status)
			}
			return nil
		},
	}
}

func deploymentGetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Show a deployment",
		ArgsUsage: "<deployment-id>",
		Flags: []cli.Flag{
			apiURLFlag(),
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: graphdeck deployment get <deployment-id>")
			}

			client, err := newControlPlaneClient(c)
			if err != nil {
				return err
			}

			dep, err := client.GetDeployment(c.Context, c.Args().First())
			if err != nil {
				return err
			}

			data, _ := json.MarshalIndent(dep, "", "  ")
			fmt.Println(string(data))
			return nil
		},
	}
}

func deploymentURLCommand() *cli.Command {
	return &cli.Command{
		Name:      "url",
		Usage:     "Print a deployment's service URL",
		ArgsUsage: "<deployment-id>",
		Flags: []cli.Flag{
			apiURLFlag(),
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: graphdeck deployment url <deployment-id>")
			}

			client, err := newControlPlaneClient(c)
			if err != nil {
				return err
			}

			dep, err := client.GetDeployment(c.Context, c.Args().First())
			if err != nil {
				return err
			}

			url, ok := dep.CustomURL()
			if !ok {
				return fmt.Errorf("deployment %s has no URL yet (not deployed?)", dep.ID)
			}
			fmt.Println(url)
			return nil
		},
	}
}

func deploymentRevisionsCommand() *cli.Command {
	return &cli.Command{
		Name:      "revisions",
		Usage:     "List a deployment's revisions, newest first",
		ArgsUsage: "<deployment-id>",
		Flags: []cli.Flag{
			apiURLFlag(),
			&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: graphdeck deployment revisions <deployment-id>")
			}

			client, err := newControlPlaneClient(c)
			if err != nil {
				return err
			}

			revisions, err := client.AllRevisions(c.Context, c.Args().First())
			if err != nil {
				return err
			}
			workflow.SortNewestFirst(revisions)

			if c.Bool("json") {
				data, _ := json.MarshalIndent(revisions, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			for _, rev := range revisions {
				fmt.Printf("%s  %-10s %s\n", rev.ID, rev.Status, rev.CreatedAt)
			}
			return nil
		},
	}
}

func deploymentLogsCommand() *cli.Command {
	return &cli.Command{
		Name:      "logs",
		Usage:     "Stream a revision's build logs",
		ArgsUsage: "<deployment-id> [revision-id]",
		Flags: []cli.Flag{
			apiURLFlag(),
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 || c.NArg() > 2 {
				return fmt.Errorf("usage: graphdeck deployment logs <deployment-id> [revision-id]")
			}
			deploymentID := c.Args().Get(0)
			revisionID := c.Args().Get(1)

			client, err := newControlPlaneClient(c)
			if err != nil {
				return err
			}

			if revisionID == "" {
				latest, err := workflow.LatestRevision(c.Context, client, deploymentID)
				if err != nil {
					return err
				}
				revisionID = latest.ID
			}

			return client.StreamRevisionLogs(c.Context, deploymentID, revisionID, os.Stdout)
		},
	}
}

func deploymentDeleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a deployment",
		ArgsUsage: "<deployment-id>",
		Flags: []cli.Flag{
			apiURLFlag(),
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip confirmation"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: graphdeck deployment delete <deployment-id>")
			}
			deploymentID := c.Args().First()

			if !c.Bool("yes") {
				fmt.Printf("Delete deployment %s? [y/N]: ", deploymentID)
				var answer string
				fmt.Scanln(&answer)
				if answer != "y" && answer != "Y" {
					fmt.Println("Aborted")
					return nil
				}
			}

			client, err := newControlPlaneClient(c)
			if err != nil {
				return err
			}

			if err := client.DeleteDeployment(c.Context, deploymentID); err != nil {
				return err
			}
			fmt.Printf("✓ Deployment %s deleted\n", deploymentID)
			return nil
		},
	}
}
