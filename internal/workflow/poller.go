package workflow

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/graphdeck/graphdeck-cli/pkg/controlplane"
)

const (
	// defaultPollInterval matches the cadence of the platform's build
	// pipeline; builds take minutes, not seconds
	defaultPollInterval = 60 * time.Second

	// defaultPollDeadline is generous because build duration is variable
	defaultPollDeadline = 30 * time.Minute

	// maxConsecutiveFetchErrors bounds transport-error tolerance inside the
	// poll loop, on top of the HTTP client's own per-call retries
	maxConsecutiveFetchErrors = 3
)

// PollOptions tunes the revision poller. Zero values select the defaults.
type PollOptions struct {
	// Interval is the fixed sleep between status fetches
	Interval time.Duration

	// Deadline is the wall-clock budget for reaching a terminal state,
	// independent of the per-call HTTP timeout
	Deadline time.Duration
}

func (o PollOptions) withDefaults() PollOptions {
	if o.Interval <= 0 {
		o.Interval = defaultPollInterval
	}
	if o.Deadline <= 0 {
		o.Deadline = defaultPollDeadline
	}
	return o
}

// Poller drives a revision from a pending/building state to a terminal one
type Poller struct {
	client *controlplane.Client
	logger hclog.Logger
	opts   PollOptions
}

// NewPoller creates a revision poller
func NewPoller(client *controlplane.Client, logger hclog.Logger, opts PollOptions) *Poller {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Poller{
		client: client,
		logger: logger,
		opts:   opts.withDefaults(),
	}
}

// AwaitRevision polls a revision at a fixed interval until it reaches a
// terminal state or the deadline elapses. An empty revisionID resolves the
// deployment's latest revision first.
//
// Outcomes:
//   - DEPLOYED: returns the revision immediately, no further polling
//   - FAILED: returns *RevisionFailedError immediately, never retried
//   - deadline elapsed while non-terminal: returns *PollTimeoutError with the
//     elapsed duration and last observed status
//   - unknown status value: returns *controlplane.UnknownRevisionStatusError
//   - transport errors: tolerated up to a small consecutive bound, then
//     escalated as-is
func (p *Poller) AwaitRevision(ctx context.Context, deploymentID, revisionID string) (*controlplane.Revision, error) {
	if deploymentID == "" {
		return nil, fmt.Errorf("deployment ID cannot be empty")
	}

	if revisionID == "" {
		latest, err := LatestRevision(ctx, p.client, deploymentID)
		if err != nil {
			return nil, err
		}
		revisionID = latest.ID
	}

	p.logger.Info("waiting for revision to deploy",
		"deployment_id", deploymentID, "revision_id", revisionID,
		"interval", p.opts.Interval, "deadline", p.opts.Deadline)

	start := time.Now()
	lastStatus := controlplane.RevisionPending
	fetchErrors := 0

	for {
		rev, err := p.client.GetRevision(ctx, deploymentID, revisionID)
		if err != nil {
			fetchErrors++
			if fetchErrors >= maxConsecutiveFetchErrors {
				return nil, fmt.Errorf("polling revision %s: %w", revisionID, err)
			}
			p.logger.Warn("revision fetch failed, will retry",
				"revision_id", revisionID, "attempt", fetchErrors, "error", err)
		} else {
			fetchErrors = 0
			lastStatus = rev.Status

			switch rev.Status {
			case controlplane.RevisionDeployed:
				p.logger.Info("revision deployed",
					"deployment_id", deploymentID, "revision_id", revisionID,
					"elapsed", time.Since(start).Round(time.Second))
				return rev, nil
			case controlplane.RevisionFailed:
				return nil, &RevisionFailedError{
					DeploymentID: deploymentID,
					RevisionID:   revisionID,
					Status:       rev.Status,
				}
			case controlplane.RevisionPending, controlplane.RevisionBuilding:
				p.logger.Debug("revision still in progress",
					"revision_id", revisionID, "status", rev.Status)
			default:
				return nil, &controlplane.UnknownRevisionStatusError{
					DeploymentID: deploymentID,
					RevisionID:   revisionID,
					Status:       rev.Status,
				}
			}
		}

		if time.Since(start)+p.opts.Interval > p.opts.Deadline {
			return nil, &PollTimeoutError{
				DeploymentID: deploymentID,
				RevisionID:   revisionID,
				Elapsed:      time.Since(start),
				LastStatus:   lastStatus,
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.opts.Interval):
		}
	}
}

// LatestRevision resolves a deployment's most recent revision by creation
// timestamp. The listing order is untrusted; revisions are sorted explicitly.
func LatestRevision(ctx context.Context, client *controlplane.Client, deploymentID string) (*controlplane.Revision, error) {
	revisions, err := client.AllRevisions(ctx, deploymentID)
	if err != nil {
		return nil, err
	}
	if len(revisions) == 0 {
		return nil, fmt.Errorf("deployment %s has no revisions", deploymentID)
	}

	sorted := make([]controlplane.Revision, len(revisions))
	copy(sorted, revisions)
	SortNewestFirst(sorted)

	latest := sorted[0]
	if _, err := revisionTime(latest); err != nil {
		return nil, fmt.Errorf("revision %s has unparseable created_at: %w", latest.ID, err)
	}
	return &latest, nil
}

// SortNewestFirst orders revisions by creation timestamp, newest first.
// Revisions with unparseable timestamps sort last.
func SortNewestFirst(revisions []controlplane.Revision) {
	sort.SliceStable(revisions, func(i, j int) bool {
		ti, erri := revisionTime(revisions[i])
		tj, errj := revisionTime(revisions[j])
		if erri != nil {
			return false
		}
		if errj != nil {
			return true
		}
		return ti.After(tj)
	})
}

// revisionTime parses a revision's creation timestamp
func revisionTime(rev controlplane.Revision) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, rev.CreatedAt)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
