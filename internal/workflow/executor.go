// Package workflow orchestrates the deployment lifecycle against the
// GraphDeck control plane: resolve the integration governing a repository,
// create or reuse a deployment bound to it, drive configuration changes to a
// deployed state by polling the build pipeline, and make sure transient
// deployments are deleted or loudly flagged.
//
// One Executor runs one deployment's lifecycle sequentially; the poll sleep
// is the only suspension point. Independent workflows may run concurrently
// because they share no local mutable state.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/graphdeck/graphdeck-cli/pkg/controlplane"
)

// Spec describes one deployment lifecycle run
type Spec struct {
	// RepositoryOwner and RepositoryName identify the source repository
	RepositoryOwner string
	RepositoryName  string

	// DeploymentName is the get-or-create idempotency key. The full
	// lifecycle variant appends a timestamp suffix to it instead.
	DeploymentName string

	// Branch is the repository ref to build (e.g. "main")
	Branch string

	// ConfigPath is the path to the graph build descriptor inside the
	// repository (e.g. "graphdeck.json")
	ConfigPath string

	// DeploymentType selects the environment tier (e.g. "dev", "prod")
	DeploymentType string

	// Patch is the configuration change to drive through after the first
	// convergence. Nil skips the mutation step.
	Patch *controlplane.PatchDeploymentRequest

	// Poll and Mutate tune the pollers; zero values use defaults
	Poll   PollOptions
	Mutate MutateOptions
}

// Result reports the observable outcome of a lifecycle run
type Result struct {
	// IntegrationID is the integration resolved for the repository
	IntegrationID string

	// DeploymentID identifies the deployment the run operated on
	DeploymentID string

	// DeploymentName is the effective name (timestamp-suffixed for the full
	// lifecycle variant)
	DeploymentName string

	// Reused is true when an existing deployment was adopted instead of
	// created
	Reused bool

	// RevisionID is the last revision driven to DEPLOYED
	RevisionID string

	// URL is the deployed service URL, when the platform has derived it
	URL string

	// Deleted is true when the run deleted the deployment at the end
	Deleted bool
}

// Executor runs deployment lifecycle workflows
type Executor struct {
	client   *controlplane.Client
	logger   hclog.Logger
	poller   *Poller
	mutator  *Mutator
	progress func(string)
}

// NewExecutor creates a lifecycle executor
func NewExecutor(client *controlplane.Client, logger hclog.Logger, spec Spec) *Executor {
	if logger == nil {
		logger = hclog.Default()
	}
	return &Executor{
		client:  client,
		logger:  logger,
		poller:  NewPoller(client, logger, spec.Poll),
		mutator: NewMutator(client, logger, spec.Mutate),
	}
}

// OnProgress registers a coarse step callback, used by the CLI to update its
// spinner. Nil disables reporting.
func (e *Executor) OnProgress(fn func(step string)) {
	e.progress = fn
}

func (e *Executor) reportProgress(step string) {
	if e.progress != nil {
		e.progress(step)
	}
}

// EnsureDeployment returns the deployment named spec.DeploymentName, creating
// it with the given integration binding only when no deployment with that
// name exists. An existing deployment is returned unchanged; configuration
// drift on reuse is the caller's concern. More than one match is a registry
// inconsistency and is reported, never resolved arbitrarily.
func (e *Executor) EnsureDeployment(ctx context.Context, spec Spec, integrationID string) (*controlplane.Deployment, bool, error) {
	// The server-side filter is a substring match; narrow to exact matches
	// client-side
	candidates, err := e.client.AllDeployments(ctx, spec.DeploymentName)
	if err != nil {
		return nil, false, err
	}

	var matches []controlplane.Deployment
	for _, d := range candidates {
		if d.Name == spec.DeploymentName {
			matches = append(matches, d)
		}
	}

	switch len(matches) {
	case 0:
		dep, err := e.client.CreateDeployment(ctx, buildCreateRequest(spec, integrationID))
		if err != nil {
			return nil, false, err
		}
		return dep, false, nil
	case 1:
		e.logger.Info("reusing existing deployment",
			"deployment_id", matches[0].ID, "name", spec.DeploymentName)
		return &matches[0], true, nil
	default:
		ambiguous := &AmbiguousDeploymentNameError{Name: spec.DeploymentName}
		for _, d := range matches {
			ambiguous.DeploymentIDs = append(ambiguous.DeploymentIDs, d.ID)
		}
		return nil, false, ambiguous
	}
}

// Run executes the reuse-friendly workflow: resolve the integration, get or
// create the named deployment, wait for its latest revision to deploy, apply
// the configuration patch, wait for the patched revision to deploy, and
// leave the deployment running for the next run. Reuse amortizes the
// multi-minute build across repeated runs.
func (e *Executor) Run(ctx context.Context, spec Spec) (*Result, error) {
	if err := validateSpec(spec); err != nil {
		return nil, err
	}

	e.reportProgress(fmt.Sprintf("Resolving integration for %s/%s", spec.RepositoryOwner, spec.RepositoryName))
	integrationID, err := e.client.FindIntegrationForRepo(ctx, spec.RepositoryOwner, spec.RepositoryName)
	if err != nil {
		return nil, err
	}

	e.reportProgress(fmt.Sprintf("Ensuring deployment %q", spec.DeploymentName))
	dep, reused, err := e.EnsureDeployment(ctx, spec, integrationID)
	if err != nil {
		return nil, err
	}

	result := &Result{
		IntegrationID:  integrationID,
		DeploymentID:   dep.ID,
		DeploymentName: dep.Name,
		Reused:         reused,
	}

	if err := e.converge(ctx, spec, result); err != nil {
		return nil, err
	}

	e.logger.Info("deployment left running for reuse",
		"deployment_id", dep.ID, "name", dep.Name)
	return result, nil
}

// RunFullLifecycle executes the isolated variant: a uniquely named deployment
// is created, driven through the same convergence steps, and always deleted
// at the end. The cleanup guard flags the deployment for manual remediation
// if the run aborts between creation and deletion.
func (e *Executor) RunFullLifecycle(ctx context.Context, spec Spec) (*Result, error) {
	if err := validateSpec(spec); err != nil {
		return nil, err
	}

	e.reportProgress(fmt.Sprintf("Resolving integration for %s/%s", spec.RepositoryOwner, spec.RepositoryName))
	integrationID, err := e.client.FindIntegrationForRepo(ctx, spec.RepositoryOwner, spec.RepositoryName)
	if err != nil {
		return nil, err
	}

	spec.DeploymentName = fmt.Sprintf("%s-%d", spec.DeploymentName, time.Now().Unix())

	e.reportProgress(fmt.Sprintf("Creating deployment %q", spec.DeploymentName))
	dep, err := e.client.CreateDeployment(ctx, buildCreateRequest(spec, integrationID))
	if err != nil {
		return nil, err
	}

	guard := NewCleanupGuard(dep.ID, e.logger)
	defer guard.Release()

	result := &Result{
		IntegrationID:  integrationID,
		DeploymentID:   dep.ID,
		DeploymentName: dep.Name,
	}

	if err := e.converge(ctx, spec, result); err != nil {
		return nil, err
	}

	e.reportProgress(fmt.Sprintf("Deleting deployment %q", dep.Name))
	if err := e.client.DeleteDeployment(ctx, dep.ID); err != nil {
		return nil, err
	}
	guard.Disarm()
	result.Deleted = true

	return result, nil
}

// converge drives the deployment's latest revision to DEPLOYED, applies the
// patch when one is configured, and drives the patched revision to DEPLOYED
func (e *Executor) converge(ctx context.Context, spec Spec, result *Result) error {
	e.reportProgress("Waiting for revision to deploy (this can take several minutes)")
	rev, err := e.poller.AwaitRevision(ctx, result.DeploymentID, "")
	if err != nil {
		return err
	}
	result.RevisionID = rev.ID

	if spec.Patch != nil {
		e.reportProgress("Applying configuration patch")
		patched, err := e.mutator.ApplyPatch(ctx, result.DeploymentID, *spec.Patch)
		if err != nil {
			return err
		}
		e.reportProgress("Waiting for patched revision to deploy")
		rev, err = e.poller.AwaitRevision(ctx, result.DeploymentID, patched.ID)
		if err != nil {
			return err
		}
		result.RevisionID = rev.ID
	}

	// The platform derives the callable URL only after the first deploy
	dep, err := e.client.GetDeployment(ctx, result.DeploymentID)
	if err != nil {
		return err
	}
	if url, ok := dep.CustomURL(); ok {
		result.URL = url
	}
	return nil
}

// buildCreateRequest assembles the create body from a spec and a resolved
// integration
func buildCreateRequest(spec Spec, integrationID string) controlplane.CreateDeploymentRequest {
	deploymentType := spec.DeploymentType
	if deploymentType == "" {
		deploymentType = "dev"
	}
	return controlplane.CreateDeploymentRequest{
		Name:   spec.DeploymentName,
		Source: controlplane.SourceGithub,
		SourceConfig: map[string]interface{}{
			"integration_id":  integrationID,
			"repo_url":        fmt.Sprintf("https://github.com/%s/%s", spec.RepositoryOwner, spec.RepositoryName),
			"deployment_type": deploymentType,
			"build_on_push":   false,
			"custom_url":      nil,
		},
		SourceRevisionConfig: map[string]interface{}{
			"repo_ref":          spec.Branch,
			"graph_config_path": spec.ConfigPath,
			"image_uri":         nil,
		},
		Secrets: []string{},
	}
}

func validateSpec(spec Spec) error {
	switch {
	case spec.RepositoryOwner == "" || spec.RepositoryName == "":
		return fmt.Errorf("repository owner and name are required")
	case spec.DeploymentName == "":
		return fmt.Errorf("deployment name is required")
	case spec.Branch == "":
		return fmt.Errorf("branch is required")
	case spec.ConfigPath == "":
		return fmt.Errorf("graph config path is required")
	}
	return nil
}
