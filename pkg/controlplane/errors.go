package controlplane

import "fmt"

// APIError is a non-2xx response from the control plane, surfaced after the
// transport layer has exhausted its retries.
type APIError struct {
	// StatusCode is the HTTP status of the failed call
	StatusCode int

	// Message is the error text extracted from the response body
	Message string

	// RequestID is the X-Request-Id sent with the failed call, for support
	// correlation
	RequestID string
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("control plane returned %d: %s (request id %s)", e.StatusCode, e.Message, e.RequestID)
	}
	return fmt.Sprintf("control plane returned %d: %s", e.StatusCode, e.Message)
}

// IntegrationNotFoundError means no integration reaches the requested
// repository after draining every integration and repository page.
type IntegrationNotFoundError struct {
	Owner string
	Name  string
}

func (e *IntegrationNotFoundError) Error() string {
	return fmt.Sprintf("no integration has access to %s/%s", e.Owner, e.Name)
}

// UnknownRevisionStatusError means the platform reported a revision status
// outside the closed set this client understands. It is surfaced rather than
// treated as progress so that new remote states cannot pass silently.
type UnknownRevisionStatusError struct {
	DeploymentID string
	RevisionID   string
	Status       RevisionStatus
}

func (e *UnknownRevisionStatusError) Error() string {
	return fmt.Sprintf("revision %s of deployment %s reported unknown status %q",
		e.RevisionID, e.DeploymentID, e.Status)
}
