package controlplane

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// deploymentPageSize bounds each deployment/revision listing call
const deploymentPageSize = 100

// ListDeployments fetches one page of deployments, optionally filtered by
// name substring
func (c *Client) ListDeployments(ctx context.Context, opts ListDeploymentsOptions) (*DeploymentsPage, error) {
	limit := opts.Limit
	if limit <= 0 || limit > deploymentPageSize {
		limit = deploymentPageSize
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(opts.Offset))
	if opts.NameContains != "" {
		query.Set("name_contains", opts.NameContains)
	}

	var page DeploymentsPage
	path := "/v2/deployments?" + query.Encode()
	if err := c.doJSON(ctx, "GET", path, nil, &page); err != nil {
		return nil, fmt.Errorf("list deployments failed: %w", err)
	}
	return &page, nil
}

// AllDeployments drains every deployment page matching the name filter
func (c *Client) AllDeployments(ctx context.Context, nameContains string) ([]Deployment, error) {
	var all []Deployment
	offset := 0
	for {
		page, err := c.ListDeployments(ctx, ListDeploymentsOptions{
			NameContains: nameContains,
			Limit:        deploymentPageSize,
			Offset:       offset,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, page.Resources...)
		if len(page.Resources) < deploymentPageSize {
			return all, nil
		}
		offset += len(page.Resources)
	}
}

// GetDeployment fetches a single deployment by id
func (c *Client) GetDeployment(ctx context.Context, deploymentID string) (*Deployment, error) {
	if deploymentID == "" {
		return nil, fmt.Errorf("deployment ID cannot be empty")
	}
	var dep Deployment
	path := fmt.Sprintf("/v2/deployments/%s", url.PathEscape(deploymentID))
	if err := c.doJSON(ctx, "GET", path, nil, &dep); err != nil {
		return nil, fmt.Errorf("get deployment failed: %w", err)
	}
	return &dep, nil
}

// CreateDeployment creates a deployment. Creation kicks off the platform's
// build pipeline: the response already carries the id of the first revision
// in most cases, but callers should resolve the latest revision explicitly
// before polling.
func (c *Client) CreateDeployment(ctx context.Context, req CreateDeploymentRequest) (*Deployment, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("deployment name cannot be empty")
	}
	if req.Secrets == nil {
		req.Secrets = []string{}
	}
	var dep Deployment
	if err := c.doJSON(ctx, "POST", "/v2/deployments", req, &dep); err != nil {
		return nil, fmt.Errorf("create deployment failed: %w", err)
	}
	c.logger.Info("deployment created", "deployment_id", dep.ID, "name", dep.Name)
	return &dep, nil
}

// PatchDeployment applies a partial configuration change. The platform
// responds before the implied new revision is necessarily visible in the
// revision listing; use workflow.ApplyPatch for the safe baseline/tie-break
// sequence.
func (c *Client) PatchDeployment(ctx context.Context, deploymentID string, req PatchDeploymentRequest) (*Deployment, error) {
	if deploymentID == "" {
		return nil, fmt.Errorf("deployment ID cannot be empty")
	}
	var dep Deployment
	path := fmt.Sprintf("/v2/deployments/%s", url.PathEscape(deploymentID))
	if err := c.doJSON(ctx, "PATCH", path, req, &dep); err != nil {
		return nil, fmt.Errorf("patch deployment failed: %w", err)
	}
	c.logger.Info("deployment patched", "deployment_id", deploymentID)
	return &dep, nil
}

// DeleteDeployment deletes a deployment by id. Deletion is asynchronous on
// the platform side; a success response means the delete was accepted.
func (c *Client) DeleteDeployment(ctx context.Context, deploymentID string) error {
	if deploymentID == "" {
		return fmt.Errorf("deployment ID cannot be empty")
	}
	path := fmt.Sprintf("/v2/deployments/%s", url.PathEscape(deploymentID))
	if err := c.doJSON(ctx, "DELETE", path, nil, nil); err != nil {
		return fmt.Errorf("delete deployment failed: %w", err)
	}
	c.logger.Info("deployment deleted", "deployment_id", deploymentID)
	return nil
}

// ListRevisions fetches one page of a deployment's revisions. The listing
// order is not guaranteed; callers that need "latest" must compare creation
// timestamps.
func (c *Client) ListRevisions(ctx context.Context, deploymentID string, offset, limit int) (*RevisionsPage, error) {
	if deploymentID == "" {
		return nil, fmt.Errorf("deployment ID cannot be empty")
	}
	if limit <= 0 || limit > deploymentPageSize {
		limit = deploymentPageSize
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	var page RevisionsPage
	path := fmt.Sprintf("/v2/deployments/%s/revisions?%s", url.PathEscape(deploymentID), query.Encode())
	if err := c.doJSON(ctx, "GET", path, nil, &page); err != nil {
		return nil, fmt.Errorf("list revisions failed: %w", err)
	}
	return &page, nil
}

// AllRevisions drains every revision page for a deployment
func (c *Client) AllRevisions(ctx context.Context, deploymentID string) ([]Revision, error) {
	var all []Revision
	offset := 0
	for {
		page, err := c.ListRevisions(ctx, deploymentID, offset, deploymentPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Resources...)
		if len(page.Resources) < deploymentPageSize {
			return all, nil
		}
		offset += len(page.Resources)
	}
}

// GetRevision fetches a single revision of a deployment
func (c *Client) GetRevision(ctx context.Context, deploymentID, revisionID string) (*Revision, error) {
	if deploymentID == "" || revisionID == "" {
		return nil, fmt.Errorf("deployment ID and revision ID cannot be empty")
	}
	var rev Revision
	path := fmt.Sprintf("/v2/deployments/%s/revisions/%s",
		url.PathEscape(deploymentID), url.PathEscape(revisionID))
	if err := c.doJSON(ctx, "GET", path, nil, &rev); err != nil {
		return nil, fmt.Errorf("get revision failed: %w", err)
	}
	return &rev, nil
}
