package main

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/graphdeck/graphdeck-cli/internal/config"
	"github.com/graphdeck/graphdeck-cli/internal/tui"
	"github.com/graphdeck/graphdeck-cli/internal/workflow"
	"github.com/graphdeck/graphdeck-cli/pkg/controlplane"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the deployment workflow from graphdeck.hcl",
		Flags: []cli.Flag{
			apiURLFlag(),
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the workflow file",
				Value:   config.DefaultFileName,
			},
			&cli.BoolFlag{
				Name:  "full",
				Usage: "Full lifecycle: create a uniquely named deployment and delete it at the end",
			},
			&cli.BoolFlag{
				Name:  "no-spinner",
				Usage: "Plain output without the progress spinner",
			},
			&cli.BoolFlag{Name: "json", Usage: "Output the result as JSON"},
		},
		Action: runWorkflow,
	}
}

func runWorkflow(c *cli.Context) error {
	cfg, err := config.ParseFile(c.String("config"))
	if err != nil {
		return err
	}

	client, err := newControlPlaneClient(c)
	if err != nil {
		return err
	}

	spec := specFromConfig(cfg.Workflow)
	executor := workflow.NewExecutor(client, nil, spec)

	var result *workflow.Result
	execute := func(status func(string)) error {
		if status != nil {
			executor.OnProgress(status)
		}
		var runErr error
		if c.Bool("full") {
			result, runErr = executor.RunFullLifecycle(c.Context, spec)
		} else {
			result, runErr = executor.Run(c.Context, spec)
		}
		return runErr
	}

	if c.Bool("no-spinner") || c.Bool("json") {
		if err := execute(nil); err != nil {
			return err
		}
	} else {
		if err := tui.RunWithSpinner("Running deployment workflow", execute); err != nil {
			return err
		}
	}

	if c.Bool("json") {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("✓ Workflow complete\n")
	fmt.Printf("  Deployment: %s (%s)\n", result.DeploymentName, result.DeploymentID)
	fmt.Printf("  Revision:   %s\n", result.RevisionID)
	if result.URL != "" {
		fmt.Printf("  URL:        %s\n", result.URL)
	}
	if result.Deleted {
		fmt.Printf("  Cleaned up: deployment deleted\n")
	} else if result.Reused {
		fmt.Printf("  Reused existing deployment; it remains running\n")
	}
	return nil
}

// specFromConfig maps the HCL workflow block onto a workflow spec
func specFromConfig(w *config.WorkflowConfig) workflow.Spec {
	spec := workflow.Spec{
		RepositoryOwner: w.RepositoryOwner,
		RepositoryName:  w.RepositoryName,
		DeploymentName:  w.DeploymentName,
		Branch:          w.Branch,
		ConfigPath:      w.ConfigPath,
		DeploymentType:  w.DeploymentType,
		Poll: workflow.PollOptions{
			Interval: w.PollIntervalDuration(),
			Deadline: w.PollDeadlineDuration(),
		},
	}

	if w.Patch != nil {
		patch := &controlplane.PatchDeploymentRequest{}
		if w.Patch.BuildOnPush != nil {
			patch.SourceConfig = map[string]interface{}{
				"build_on_push": *w.Patch.BuildOnPush,
			}
		}
		branch := w.Patch.Branch
		if branch == "" {
			branch = w.Branch
		}
		configPath := w.Patch.ConfigPath
		if configPath == "" {
			configPath = w.ConfigPath
		}
		patch.SourceRevisionConfig = map[string]interface{}{
			"repo_ref":          branch,
			"graph_config_path": configPath,
		}
		spec.Patch = patch
	}

	return spec
}
