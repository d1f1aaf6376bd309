package config

import (
	"fmt"
	"time"
)

var validDeploymentTypes = map[string]bool{
	"dev_free": true,
	"dev":      true,
	"prod":     true,
}

// Validate checks a decoded configuration for missing or malformed fields
func Validate(config *Config) error {
	if config.Project == "" {
		return fmt.Errorf("project name is required")
	}
	if config.Workflow == nil {
		return fmt.Errorf("workflow block is required")
	}

	w := config.Workflow
	if w.RepositoryOwner == "" {
		return fmt.Errorf("workflow: repository_owner is required")
	}
	if w.RepositoryName == "" {
		return fmt.Errorf("workflow: repository_name is required")
	}
	if w.DeploymentName == "" {
		return fmt.Errorf("workflow: deployment_name is required")
	}
	if !validDeploymentTypes[w.DeploymentType] {
		return fmt.Errorf("workflow: invalid deployment_type %q (expected dev_free, dev or prod)", w.DeploymentType)
	}

	if err := validDuration("poll_interval", w.PollInterval); err != nil {
		return err
	}
	if err := validDuration("poll_deadline", w.PollDeadline); err != nil {
		return err
	}
	return nil
}

func validDuration(field, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("workflow: invalid %s %q: %w", field, value, err)
	}
	if d <= 0 {
		return fmt.Errorf("workflow: %s must be positive, got %q", field, value)
	}
	return nil
}

// PollIntervalDuration returns the parsed poll interval, or zero when unset
func (w *WorkflowConfig) PollIntervalDuration() time.Duration {
	return parseDurationOrZero(w.PollInterval)
}

// PollDeadlineDuration returns the parsed poll deadline, or zero when unset
func (w *WorkflowConfig) PollDeadlineDuration() time.Duration {
	return parseDurationOrZero(w.PollDeadline)
}

func parseDurationOrZero(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
