// Package config loads and validates graphdeck.hcl workflow files
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// DefaultFileName is the conventional workflow file name
const DefaultFileName = "graphdeck.hcl"

// ParseFile parses an HCL workflow file and returns a validated Config
func ParseFile(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", absPath)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(absPath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	return decode(file)
}

// ParseBytes parses HCL workflow configuration from a byte slice
func ParseBytes(data []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}

	return decode(file)
}

func decode(file *hcl.File) (*Config, error) {
	var config Config
	diags := gohcl.DecodeBody(file.Body, evalContext(), &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode configuration: %s", diags.Error())
	}

	applyDefaults(&config)
	if err := Validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// evalContext exposes the env("NAME") function so workflow files can pull
// values from the environment without hardcoding them
func evalContext() *hcl.EvalContext {
	envFunc := function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "name", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			return cty.StringVal(os.Getenv(args[0].AsString())), nil
		},
	})

	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"env": envFunc,
		},
	}
}

func applyDefaults(config *Config) {
	if config.Workflow == nil {
		return
	}
	w := config.Workflow
	if w.Branch == "" {
		w.Branch = "main"
	}
	if w.ConfigPath == "" {
		w.ConfigPath = "graphdeck.json"
	}
	if w.DeploymentType == "" {
		w.DeploymentType = "dev"
	}
}
