package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalConfig = `
project = "acme-graphs"

workflow {
  repository_owner = "acme"
  repository_name  = "widgets"
  deployment_name  = "ci-check"
}
`

const fullConfig = `
project = "acme-graphs"

workflow {
  repository_owner = "acme"
  repository_name  = "widgets"
  deployment_name  = "ci-check"
  branch           = "release"
  config_path      = "configs/agent.json"
  deployment_type  = "prod"
  poll_interval    = "30s"
  poll_deadline    = "45m"

  patch {
    build_on_push = true
    branch        = "release"
  }
}
`

func TestParseBytes(t *testing.T) {
	t.Run("minimal config gets defaults", func(t *testing.T) {
		cfg, err := ParseBytes([]byte(minimalConfig), "graphdeck.hcl")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		w := cfg.Workflow
		if w.Branch != "main" {
			t.Errorf("Branch = %q, want default main", w.Branch)
		}
		if w.ConfigPath != "graphdeck.json" {
			t.Errorf("ConfigPath = %q, want default graphdeck.json", w.ConfigPath)
		}
		if w.DeploymentType != "dev" {
			t.Errorf("DeploymentType = %q, want default dev", w.DeploymentType)
		}
		if w.Patch != nil {
			t.Error("Patch should be nil when the block is absent")
		}
	})

	t.Run("full config", func(t *testing.T) {
		cfg, err := ParseBytes([]byte(fullConfig), "graphdeck.hcl")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		w := cfg.Workflow
		if w.DeploymentType != "prod" {
			t.Errorf("DeploymentType = %q, want prod", w.DeploymentType)
		}
		if got := w.PollIntervalDuration(); got != 30*time.Second {
			t.Errorf("PollIntervalDuration = %s, want 30s", got)
		}
		if got := w.PollDeadlineDuration(); got != 45*time.Minute {
			t.Errorf("PollDeadlineDuration = %s, want 45m", got)
		}
		if w.Patch == nil {
			t.Fatal("Patch block not decoded")
		}
		if w.Patch.BuildOnPush == nil || !*w.Patch.BuildOnPush {
			t.Error("Patch.BuildOnPush not decoded as true")
		}
		if w.Patch.Branch != "release" {
			t.Errorf("Patch.Branch = %q, want release", w.Patch.Branch)
		}
	})

	t.Run("env function", func(t *testing.T) {
		t.Setenv("GRAPHDECK_TEST_BRANCH", "feature-x")
		src := strings.Replace(minimalConfig,
			`deployment_name  = "ci-check"`,
			"deployment_name  = \"ci-check\"\n  branch = env(\"GRAPHDECK_TEST_BRANCH\")", 1)

		cfg, err := ParseBytes([]byte(src), "graphdeck.hcl")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Workflow.Branch != "feature-x" {
			t.Errorf("Branch = %q, want feature-x", cfg.Workflow.Branch)
		}
	})

	t.Run("malformed HCL", func(t *testing.T) {
		if _, err := ParseBytes([]byte(`project = `), "graphdeck.hcl"); err == nil {
			t.Error("expected parse error, got nil")
		}
	})
}

func TestParseFile(t *testing.T) {
	t.Run("reads from disk", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, DefaultFileName)
		if err := os.WriteFile(path, []byte(minimalConfig), 0o644); err != nil {
			t.Fatal(err)
		}

		cfg, err := ParseFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Project != "acme-graphs" {
			t.Errorf("Project = %q, want acme-graphs", cfg.Project)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ParseFile(filepath.Join(t.TempDir(), "missing.hcl"))
		if err == nil || !strings.Contains(err.Error(), "not found") {
			t.Errorf("expected not-found error, got: %v", err)
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Project: "acme-graphs",
			Workflow: &WorkflowConfig{
				RepositoryOwner: "acme",
				RepositoryName:  "widgets",
				DeploymentName:  "ci-check",
				DeploymentType:  "dev",
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing project", func(c *Config) { c.Project = "" }, "project name"},
		{"missing workflow", func(c *Config) { c.Workflow = nil }, "workflow block"},
		{"missing owner", func(c *Config) { c.Workflow.RepositoryOwner = "" }, "repository_owner"},
		{"missing repo name", func(c *Config) { c.Workflow.RepositoryName = "" }, "repository_name"},
		{"missing deployment name", func(c *Config) { c.Workflow.DeploymentName = "" }, "deployment_name"},
		{"bad deployment type", func(c *Config) { c.Workflow.DeploymentType = "staging" }, "deployment_type"},
		{"bad poll interval", func(c *Config) { c.Workflow.PollInterval = "sixty" }, "poll_interval"},
		{"negative poll deadline", func(c *Config) { c.Workflow.PollDeadline = "-5m" }, "poll_deadline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}
