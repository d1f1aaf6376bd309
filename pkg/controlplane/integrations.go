package controlplane

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// integrationPageSize bounds each listing call; the control plane caps limit
// at 100 server-side
const integrationPageSize = 100

// ListIntegrations fetches one page of the source-control integrations
// visible to the caller. Pass an empty cursor for the first page; a page with
// an empty NextCursor is the last one.
func (c *Client) ListIntegrations(ctx context.Context, cursor string, limit int) (*IntegrationsPage, error) {
	if limit <= 0 || limit > integrationPageSize {
		limit = integrationPageSize
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	var page IntegrationsPage
	path := "/v1/integrations/github/install?" + query.Encode()
	if err := c.doJSON(ctx, "GET", path, nil, &page); err != nil {
		return nil, fmt.Errorf("list integrations failed: %w", err)
	}
	return &page, nil
}

// ListRepositories fetches one page of the repositories reachable through an
// integration. Pagination follows the same cursor contract as
// ListIntegrations.
func (c *Client) ListRepositories(ctx context.Context, integrationID, cursor string, limit int) (*RepositoriesPage, error) {
	if integrationID == "" {
		return nil, fmt.Errorf("integration ID cannot be empty")
	}
	if limit <= 0 || limit > integrationPageSize {
		limit = integrationPageSize
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	var page RepositoriesPage
	path := fmt.Sprintf("/v1/integrations/github/%s/repos?%s", url.PathEscape(integrationID), query.Encode())
	if err := c.doJSON(ctx, "GET", path, nil, &page); err != nil {
		return nil, fmt.Errorf("list repositories failed: %w", err)
	}
	return &page, nil
}

// AllIntegrations drains every integration page
func (c *Client) AllIntegrations(ctx context.Context) ([]Integration, error) {
	var all []Integration
	cursor := ""
	for {
		page, err := c.ListIntegrations(ctx, cursor, integrationPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Resources...)
		if page.NextCursor == "" {
			return all, nil
		}
		cursor = page.NextCursor
	}
}

// AllRepositories drains every repository page for an integration
func (c *Client) AllRepositories(ctx context.Context, integrationID string) ([]Repository, error) {
	var all []Repository
	cursor := ""
	for {
		page, err := c.ListRepositories(ctx, integrationID, cursor, integrationPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Resources...)
		if page.NextCursor == "" {
			return all, nil
		}
		cursor = page.NextCursor
	}
}

// FindIntegrationForRepo returns the id of the integration that has access to
// owner/name. Matching is exact and case-sensitive; no fuzzy fallback.
//
// Every integration page and every repository page is drained before the
// repository is declared unreachable, so "not found" is authoritative rather
// than an artifact of pagination. When more than one integration could serve
// the repository the first one in listing order wins; the lookup is read-only
// either way.
//
// Returns *IntegrationNotFoundError when no integration reaches the
// repository.
func (c *Client) FindIntegrationForRepo(ctx context.Context, owner, name string) (string, error) {
	if owner == "" || name == "" {
		return "", fmt.Errorf("repository owner and name cannot be empty")
	}

	integrations, err := c.AllIntegrations(ctx)
	if err != nil {
		return "", err
	}

	for _, integration := range integrations {
		repos, err := c.AllRepositories(ctx, integration.ID)
		if err != nil {
			// An integration whose repository listing fails cannot be
			// ruled in or out; log and keep searching the rest.
			c.logger.Warn("skipping integration with unlistable repositories",
				"integration_id", integration.ID, "error", err)
			continue
		}
		for _, repo := range repos {
			if repo.Owner == owner && repo.Name == name {
				c.logger.Debug("resolved integration for repository",
					"integration_id", integration.ID, "owner", owner, "repo", name)
				return integration.ID, nil
			}
		}
	}

	return "", &IntegrationNotFoundError{Owner: owner, Name: name}
}
