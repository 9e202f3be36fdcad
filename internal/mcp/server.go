// Package mcp exposes the layerfang checker over the Model Context Protocol
// so AI agents can run layer checks and triage the findings.
package mcp

import (
	"context"
	"fmt"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/layerfang/pkg/version"
)

// toolCheck is the tool name agents discover and invoke.
const toolCheck = "layerfang_check"

// ServerDeps carries the server's external dependencies.
type ServerDeps struct {
	Logger *slog.Logger
}

// Server is the layerfang MCP server on stdio transport.
type Server struct {
	server *mcpsdk.Server
	tools  []string
	log    *slog.Logger
}

// NewServer creates the MCP server and registers its tools.
func NewServer(deps ServerDeps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	impl := &mcpsdk.Implementation{
		Name:    "layerfang",
		Version: version.Version,
	}

	srv := &Server{
		server: mcpsdk.NewServer(impl, nil),
		log:    logger,
	}

	mcpsdk.AddTool(srv.server, &mcpsdk.Tool{
		Name: toolCheck,
		Description: "Check a Python package tree for forbidden layered-architecture " +
			"import directions and return the violations.",
	}, srv.handleCheck)

	srv.tools = append(srv.tools, toolCheck)

	return srv
}

// ListToolNames returns the registered tool names.
func (s *Server) ListToolNames() []string {
	names := make([]string, len(s.tools))
	copy(names, s.tools)

	return names
}

// Run serves MCP requests on stdio until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("starting MCP server", "tools", s.tools)

	err := s.server.Run(ctx, &mcpsdk.StdioTransport{})
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}
