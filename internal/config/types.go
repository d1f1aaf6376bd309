package config

// Config is the root of a graphdeck.hcl file
type Config struct {
	// Project is the project name
	Project string `hcl:"project,attr"`

	// Workflow describes the deployment lifecycle to run
	Workflow *WorkflowConfig `hcl:"workflow,block"`
}

// WorkflowConfig describes one deployment lifecycle
type WorkflowConfig struct {
	// RepositoryOwner and RepositoryName identify the source repository
	RepositoryOwner string `hcl:"repository_owner,attr"`
	RepositoryName  string `hcl:"repository_name,attr"`

	// DeploymentName is the get-or-create idempotency key
	DeploymentName string `hcl:"deployment_name,attr"`

	// Branch is the repository ref to build (default "main")
	Branch string `hcl:"branch,optional"`

	// ConfigPath is the graph build descriptor path inside the repository
	// (default "graphdeck.json")
	ConfigPath string `hcl:"config_path,optional"`

	// DeploymentType selects the environment tier: dev_free, dev or prod
	// (default "dev")
	DeploymentType string `hcl:"deployment_type,optional"`

	// PollInterval and PollDeadline are duration strings ("60s", "30m")
	// tuning the revision poller
	PollInterval string `hcl:"poll_interval,optional"`
	PollDeadline string `hcl:"poll_deadline,optional"`

	// Patch is the configuration change driven through after the first
	// convergence
	Patch *PatchConfig `hcl:"patch,block"`
}

// PatchConfig describes the post-convergence configuration patch
type PatchConfig struct {
	// BuildOnPush toggles automatic builds on repository pushes
	BuildOnPush *bool `hcl:"build_on_push,optional"`

	// Branch and ConfigPath override the revision config in the patch;
	// empty values fall back to the workflow's settings
	Branch     string `hcl:"branch,optional"`
	ConfigPath string `hcl:"config_path,optional"`
}
