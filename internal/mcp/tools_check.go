package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/layerfang/internal/config"
	"github.com/Sumatoshi-tech/layerfang/pkg/scan"
)

// CheckInput is the layerfang_check tool request.
type CheckInput struct {
	Root         string   `json:"root" jsonschema:"Package root directory to scan."`
	PackageName  string   `json:"package_name,omitempty" jsonschema:"Top-level package name; defaults to the root basename."`
	Layers       []string `json:"layers,omitempty" jsonschema:"Layer directory names under the root."`
	Forbid       []string `json:"forbid,omitempty" jsonschema:"Forbidden edges as 'from:to1,to2' entries; defaults to the layered policy."`
	IncludeTests bool     `json:"include_tests,omitempty" jsonschema:"Scan files under tests directories."`
}

// CheckOutput is the layerfang_check tool result.
type CheckOutput struct {
	Clean        bool             `json:"clean"`
	FilesScanned int              `json:"files_scanned"`
	Violations   []scan.Violation `json:"violations"`
}

// handleCheck processes layerfang_check tool calls.
func (s *Server) handleCheck(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input CheckInput,
) (*mcpsdk.CallToolResult, CheckOutput, error) {
	cfg := &config.Config{
		Root:         input.Root,
		PackageName:  input.PackageName,
		Layers:       input.Layers,
		Forbid:       input.Forbid,
		IncludeTests: input.IncludeTests,
		Workers:      config.DefaultWorkers,
		Format:       config.FormatText,
	}

	if len(cfg.Layers) == 0 {
		cfg.Layers = config.DefaultLayers
	}

	cfg.ResolvePackageName()

	err := cfg.Validate()
	if err != nil {
		return errorResult(err)
	}

	policy, err := cfg.Policy()
	if err != nil {
		return errorResult(err)
	}

	scanner := scan.New(scan.Options{
		Root:         cfg.Root,
		PackageName:  cfg.PackageName,
		Layers:       cfg.Layers,
		Policy:       policy,
		IncludeTests: cfg.IncludeTests,
		Workers:      cfg.Workers,
		Logger:       s.log,
	})

	result, err := scanner.Run(ctx)
	if err != nil {
		return errorResult(err)
	}

	violations := result.Violations
	if violations == nil {
		violations = []scan.Violation{}
	}

	return nil, CheckOutput{
		Clean:        result.Clean(),
		FilesScanned: result.FilesScanned,
		Violations:   violations,
	}, nil
}

// errorResult wraps a tool failure into an MCP error result instead of a
// protocol error, so agents see the message.
func errorResult(err error) (*mcpsdk.CallToolResult, CheckOutput, error) {
	return &mcpsdk.CallToolResult{
		IsError: true,
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: err.Error()}},
	}, CheckOutput{}, nil
}
