package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/graphdeck/graphdeck-cli/pkg/controlplane"
)

const (
	// defaultAppearInterval is the cadence for checking whether the patch's
	// implied revision has shown up in the listing
	defaultAppearInterval = 5 * time.Second

	// defaultAppearDeadline bounds the wait for the new revision to appear.
	// Revision creation is fast relative to the build itself.
	defaultAppearDeadline = 2 * time.Minute
)

// MutateOptions tunes the configuration mutator. Zero values select the
// defaults.
type MutateOptions struct {
	// AppearInterval is the sleep between revision-list checks after a patch
	AppearInterval time.Duration

	// AppearDeadline bounds the wait for the patched revision to appear
	AppearDeadline time.Duration
}

func (o MutateOptions) withDefaults() MutateOptions {
	if o.AppearInterval <= 0 {
		o.AppearInterval = defaultAppearInterval
	}
	if o.AppearDeadline <= 0 {
		o.AppearDeadline = defaultAppearDeadline
	}
	return o
}

// Mutator applies configuration patches and identifies the revision each
// patch creates
type Mutator struct {
	client *controlplane.Client
	logger hclog.Logger
	opts   MutateOptions
}

// NewMutator creates a configuration mutator
func NewMutator(client *controlplane.Client, logger hclog.Logger, opts MutateOptions) *Mutator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Mutator{
		client: client,
		logger: logger,
		opts:   opts.withDefaults(),
	}
}

// ApplyPatch applies a configuration patch to a deployment and returns the
// revision the patch created.
//
// The control plane does not return the new revision id from the patch call,
// and the revision listing carries no ordering guarantee. The safe sequence
// is: record the latest revision's creation timestamp before patching, apply
// the patch, then watch the listing for a revision with a strictly later
// timestamp. When several qualify (e.g. a concurrent external push), the one
// with the greatest timestamp is the patch's revision.
func (m *Mutator) ApplyPatch(ctx context.Context, deploymentID string, patch controlplane.PatchDeploymentRequest) (*controlplane.Revision, error) {
	if deploymentID == "" {
		return nil, fmt.Errorf("deployment ID cannot be empty")
	}

	baseline, err := LatestRevision(ctx, m.client, deploymentID)
	if err != nil {
		return nil, fmt.Errorf("resolving pre-patch baseline: %w", err)
	}
	baselineTime, err := revisionTime(*baseline)
	if err != nil {
		return nil, fmt.Errorf("baseline revision %s has unparseable created_at: %w", baseline.ID, err)
	}

	m.logger.Debug("recorded pre-patch baseline",
		"deployment_id", deploymentID, "revision_id", baseline.ID, "created_at", baseline.CreatedAt)

	if _, err := m.client.PatchDeployment(ctx, deploymentID, patch); err != nil {
		return nil, err
	}

	start := time.Now()
	for {
		rev, err := m.newestAfter(ctx, deploymentID, baselineTime)
		if err != nil {
			return nil, err
		}
		if rev != nil {
			m.logger.Info("patch created new revision",
				"deployment_id", deploymentID, "revision_id", rev.ID, "created_at", rev.CreatedAt)
			return rev, nil
		}

		if time.Since(start)+m.opts.AppearInterval > m.opts.AppearDeadline {
			return nil, fmt.Errorf("patched deployment %s but no revision newer than %s appeared within %s",
				deploymentID, baseline.ID, m.opts.AppearDeadline)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.opts.AppearInterval):
		}
	}
}

// newestAfter returns the revision with the greatest creation timestamp
// strictly later than baseline, or nil when none qualifies yet
func (m *Mutator) newestAfter(ctx context.Context, deploymentID string, baseline time.Time) (*controlplane.Revision, error) {
	revisions, err := m.client.AllRevisions(ctx, deploymentID)
	if err != nil {
		return nil, err
	}

	var newest *controlplane.Revision
	var newestTime time.Time
	for i := range revisions {
		t, err := revisionTime(revisions[i])
		if err != nil {
			m.logger.Warn("skipping revision with unparseable created_at",
				"revision_id", revisions[i].ID, "error", err)
			continue
		}
		if !t.After(baseline) {
			continue
		}
		if newest == nil || t.After(newestTime) {
			newest = &revisions[i]
			newestTime = t
		}
	}
	return newest, nil
}
