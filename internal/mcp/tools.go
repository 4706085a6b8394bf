package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/floatwm/internal/ipc"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	status, err := s.daemon.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, StatusOutput{
		Running:       status.DaemonRunning,
		Layout:        status.Layout,
		WindowCount:   status.WindowCount,
		Focused:       status.Focused,
		UptimeSeconds: status.UptimeSeconds,
		Session:       status.Session,
	}, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	data, err := s.daemon.ListWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}

	windows := make([]ipc.WindowInfo, 0, len(data.Windows))
	needle := strings.ToLower(strings.TrimSpace(args.Title))
	for _, w := range data.Windows {
		if needle != "" && !strings.Contains(strings.ToLower(w.Title), needle) {
			continue
		}
		windows = append(windows, w)
	}
	return nil, ListWindowsOutput{Windows: windows}, nil
}

func (s *Server) handleListOutputs(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ListOutputsOutput, error) {
	data, err := s.daemon.GetOutputs()
	if err != nil {
		return nil, ListOutputsOutput{}, err
	}
	return nil, ListOutputsOutput{Outputs: data.Outputs}, nil
}

func (s *Server) handleStopSession(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, StopSessionOutput, error) {
	var out StopSessionOutput
	if status, err := s.daemon.GetStatus(); err == nil {
		out.WasActive = status.Session.Active
		out.Window = status.Session.Window
	}
	if err := s.daemon.StopSession(); err != nil {
		return nil, StopSessionOutput{}, err
	}
	s.logger.Info("session stopped via MCP", "was_active", out.WasActive, "window", out.Window)

	msg := "No session was running"
	if out.WasActive {
		msg = fmt.Sprintf("Stopped session on window %d", out.Window)
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: msg},
		},
	}, out, nil
}

func (s *Server) handleArrange(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := s.daemon.Arrange(); err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, ActionOutput{OK: true}, nil
}

func (s *Server) handleReload(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := s.daemon.Reload(); err != nil {
		return nil, ActionOutput{}, fmt.Errorf("reload failed: %w", err)
	}
	return nil, ActionOutput{OK: true}, nil
}
