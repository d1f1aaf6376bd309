package workflow

import (
	"sync"

	"github.com/hashicorp/go-hclog"
)

// CleanupGuard is a deferred-release ticket for a deployment created for a
// transient purpose. It converts a silently leaked deployment into a loudly
// flagged one; it does not delete anything itself, because the deferred path
// must not attempt the asynchronous delete call.
//
// Usage:
//
//	guard := NewCleanupGuard(dep.ID, logger)
//	defer guard.Release()
//	...
//	client.DeleteDeployment(ctx, dep.ID)
//	guard.Disarm()
//
// Release emits exactly one abandonment warning when the guard is still
// armed; after Disarm it is silent. The warning is a diagnostic, not an error
// return: the real backstop is an out-of-band sweep that deletes deployments
// matching the transient naming convention past a grace period.
type CleanupGuard struct {
	mu           sync.Mutex
	deploymentID string
	armed        bool
	logger       hclog.Logger
}

// NewCleanupGuard creates an armed guard for a deployment this process
// created
func NewCleanupGuard(deploymentID string, logger hclog.Logger) *CleanupGuard {
	if logger == nil {
		logger = hclog.Default()
	}
	return &CleanupGuard{
		deploymentID: deploymentID,
		armed:        true,
		logger:       logger,
	}
}

// Disarm marks the deployment as explicitly cleaned up; Release becomes a
// no-op
func (g *CleanupGuard) Disarm() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.armed = false
}

// Armed reports whether the guard would still warn on release
func (g *CleanupGuard) Armed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.armed
}

// Release emits the abandonment warning if the guard is still armed. Calling
// it more than once warns at most once.
func (g *CleanupGuard) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.armed {
		return
	}
	g.armed = false
	g.logger.Warn("deployment was not cleaned up and may still be running",
		"deployment_id", g.deploymentID,
		"action", "delete it manually with 'graphdeck deployment delete "+g.deploymentID+"'")
}
