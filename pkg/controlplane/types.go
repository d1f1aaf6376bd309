package controlplane

// Integration represents a source-control connection authorized to access
// specific repositories. Integrations are owned by the control plane and are
// read-only from the CLI's perspective.
type Integration struct {
	// ID is the unique identifier of the integration
	ID string `json:"id"`

	// Name is the display name, if the integration has one
	Name string `json:"name,omitempty"`

	// Provider is the source-control vendor tag (currently always "github")
	Provider string `json:"provider,omitempty"`

	// OrganizationID references the owning organization
	OrganizationID string `json:"organization_id,omitempty"`
}

// Repository is a repository reachable through an integration
type Repository struct {
	// Owner is the repository owner (e.g. "acme")
	Owner string `json:"owner"`

	// Name is the repository name (e.g. "widgets")
	Name string `json:"name"`
}

// IntegrationsPage is one page of the integration listing
type IntegrationsPage struct {
	Resources  []Integration `json:"resources"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// RepositoriesPage is one page of the repository listing for an integration
type RepositoriesPage struct {
	Resources  []Repository `json:"resources"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// DeploymentSource identifies how a deployment's build inputs are supplied
type DeploymentSource string

const (
	// SourceGithub builds from a repository reached through an integration
	SourceGithub DeploymentSource = "github"

	// SourceExternalDocker deploys a manually configured image
	SourceExternalDocker DeploymentSource = "external_docker"
)

// Deployment is a named, long-lived platform resource built from a
// repository/branch/config triple
type Deployment struct {
	// ID is the unique identifier of the deployment
	ID string `json:"id"`

	// Name is the user-assigned name (the natural idempotency key)
	Name string `json:"name"`

	// Source is the source kind (github or external_docker)
	Source DeploymentSource `json:"source"`

	// SourceConfig is the opaque source configuration blob. It carries the
	// integration id, repo URL and, once the platform derives it, the
	// deployment's callable custom_url.
	SourceConfig map[string]interface{} `json:"source_config,omitempty"`

	// SourceRevisionConfig carries the branch, graph config path and
	// optional image URI for the next revision
	SourceRevisionConfig map[string]interface{} `json:"source_revision_config,omitempty"`

	// Status is the deployment-level status string reported by the platform
	Status string `json:"status,omitempty"`

	// LatestRevisionID is the id of the most recent revision, if reported
	LatestRevisionID string `json:"latest_revision_id,omitempty"`

	// CreatedAt and UpdatedAt are RFC 3339 timestamps
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// CustomURL extracts the deployed service URL from the source configuration
// blob. The platform populates custom_url only after the first revision
// deploys; before that (or for a null value) the second return is false.
func (d *Deployment) CustomURL() (string, bool) {
	if d.SourceConfig == nil {
		return "", false
	}
	v, ok := d.SourceConfig["custom_url"]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// IntegrationID extracts the integration id from the source configuration
// blob, if present
func (d *Deployment) IntegrationID() (string, bool) {
	if d.SourceConfig == nil {
		return "", false
	}
	s, ok := d.SourceConfig["integration_id"].(string)
	return s, ok && s != ""
}

// DeploymentsPage is one page of the deployment listing
type DeploymentsPage struct {
	Resources []Deployment `json:"resources"`
	Offset    int          `json:"offset"`
}

// ListDeploymentsOptions filters and paginates the deployment listing
type ListDeploymentsOptions struct {
	// NameContains filters by name substring (server-side)
	NameContains string

	// Limit caps the page size (default 20, max 100)
	Limit int

	// Offset skips entries for pagination
	Offset int
}

// CreateDeploymentRequest is the body of the deployment create call
type CreateDeploymentRequest struct {
	Name                 string                 `json:"name"`
	Source               DeploymentSource       `json:"source"`
	SourceConfig         map[string]interface{} `json:"source_config"`
	SourceRevisionConfig map[string]interface{} `json:"source_revision_config"`
	Secrets              []string               `json:"secrets"`
}

// PatchDeploymentRequest is the body of the deployment patch call. Applying a
// patch implicitly creates a new revision on the platform side.
type PatchDeploymentRequest struct {
	SourceConfig         map[string]interface{} `json:"source_config,omitempty"`
	SourceRevisionConfig map[string]interface{} `json:"source_revision_config,omitempty"`
}

// RevisionStatus is the closed set of revision states reported by the build
// pipeline. Values outside this set are surfaced as UnknownRevisionStatusError
// by callers that need to branch on status, never silently ignored.
type RevisionStatus string

const (
	RevisionPending  RevisionStatus = "PENDING"
	RevisionBuilding RevisionStatus = "BUILDING"
	RevisionDeployed RevisionStatus = "DEPLOYED"
	RevisionFailed   RevisionStatus = "FAILED"
)

// Known reports whether s is one of the statuses this client understands
func (s RevisionStatus) Known() bool {
	switch s {
	case RevisionPending, RevisionBuilding, RevisionDeployed, RevisionFailed:
		return true
	}
	return false
}

// Terminal reports whether s is a terminal state. Unknown statuses are not
// terminal; callers decide how to surface them.
func (s RevisionStatus) Terminal() bool {
	return s == RevisionDeployed || s == RevisionFailed
}

// Revision is one immutable build attempt of a deployment's configuration.
// Revisions are never mutated or deleted by this client, only observed.
type Revision struct {
	// ID is the unique identifier of the revision
	ID string `json:"id"`

	// DeploymentID is the owning deployment
	DeploymentID string `json:"deployment_id"`

	// Status is the current pipeline status
	Status RevisionStatus `json:"status"`

	// CreatedAt is a monotonically increasing RFC 3339 creation timestamp
	CreatedAt string `json:"created_at"`
}

// RevisionsPage is one page of the revision listing for a deployment
type RevisionsPage struct {
	Resources []Revision `json:"resources"`
	Offset    int        `json:"offset"`
}

// apiErrorBody is the error envelope returned by the control plane
type apiErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func (b *apiErrorBody) message(raw []byte) string {
	switch {
	case b.Error != "":
		return b.Error
	case b.Message != "":
		return b.Message
	case b.Detail != "":
		return b.Detail
	}
	s := string(raw)
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
