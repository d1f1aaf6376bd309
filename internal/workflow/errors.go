package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/graphdeck/graphdeck-cli/pkg/controlplane"
)

// AmbiguousDeploymentNameError means a get-or-create name matched more than
// one existing deployment. Picking one arbitrarily would hide a registry
// inconsistency, so the operation reports instead.
type AmbiguousDeploymentNameError struct {
	Name          string
	DeploymentIDs []string
}

func (e *AmbiguousDeploymentNameError) Error() string {
	return fmt.Sprintf("deployment name %q matches %d deployments (%s); refusing to pick one",
		e.Name, len(e.DeploymentIDs), strings.Join(e.DeploymentIDs, ", "))
}

// RevisionFailedError is a terminal build failure. A failed build does not
// self-heal, so this error is never retried.
type RevisionFailedError struct {
	DeploymentID string
	RevisionID   string
	Status       controlplane.RevisionStatus
}

func (e *RevisionFailedError) Error() string {
	return fmt.Sprintf("revision %s of deployment %s failed with status %s",
		e.RevisionID, e.DeploymentID, e.Status)
}

// PollTimeoutError means the poll deadline elapsed while the revision was
// still in a non-terminal state. It is distinct from RevisionFailedError so
// callers can tell "the build is broken" from "the build is just slow".
type PollTimeoutError struct {
	DeploymentID string
	RevisionID   string
	Elapsed      time.Duration
	LastStatus   controlplane.RevisionStatus
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for revision %s of deployment %s (last status %s)",
		e.Elapsed.Round(time.Second), e.RevisionID, e.DeploymentID, e.LastStatus)
}
