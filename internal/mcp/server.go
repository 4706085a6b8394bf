// Package mcp exposes the running window manager to MCP clients over stdio.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/floatwm/internal/ipc"
)

const (
	ServerName    = "floatwm"
	ServerVersion = "0.1.0"
)

// Daemon is the IPC surface the tools forward to. *ipc.Client implements it.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	ListWindows() (*ipc.WindowsData, error)
	GetOutputs() (*ipc.OutputsData, error)
	StopSession() error
	Arrange() error
	Reload() error
}

// Server is the MCP server for floatwm.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	logger    *slog.Logger
}

// NewServer creates an MCP server forwarding to daemon.
func NewServer(daemon Daemon, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		daemon: daemon,
		logger: logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report whether floatwm is running, the active layout, the number of managed windows, the focused window and the state of the interactive move/resize session.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List managed windows bottom to top with id, title, geometry and the activated/resizing flags. Optionally filter by title.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_outputs",
		Description: "List the outputs (monitors) floatwm arranges windows on.",
	}, s.handleListOutputs)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "stop_session",
		Description: "End the interactive move/resize session. Use this when a drag is stuck because its button release was lost. Safe to call when no session is running.",
	}, s.handleStopSession)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "arrange",
		Description: "Re-apply the configured layout to every output.",
	}, s.handleArrange)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reload_config",
		Description: "Make floatwm re-read its config file. Fails with the validation error if the file is invalid; the running config is kept in that case.",
	}, s.handleReload)
}
