package mcp

import "github.com/1broseidon/floatwm/internal/ipc"

// EmptyInput is the input for tools that take no arguments.
type EmptyInput struct{}

// StatusOutput is the output for the get_status tool.
type StatusOutput struct {
	Running       bool            `json:"running"`
	Layout        string          `json:"layout"`
	WindowCount   int             `json:"window_count"`
	Focused       uint32          `json:"focused,omitempty"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	Session       ipc.SessionInfo `json:"session"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	Title string `json:"title,omitempty" jsonschema:"Only return windows whose title contains this text (case-insensitive)"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []ipc.WindowInfo `json:"windows"`
}

// ListOutputsOutput is the output for the list_outputs tool.
type ListOutputsOutput struct {
	Outputs []ipc.OutputInfo `json:"outputs"`
}

// StopSessionOutput is the output for the stop_session tool.
type StopSessionOutput struct {
	// WasActive reports whether a session was running when the call arrived.
	WasActive bool   `json:"was_active"`
	Window    uint32 `json:"window,omitempty"`
}

// ActionOutput is the output for tools that only trigger an action.
type ActionOutput struct {
	OK bool `json:"ok"`
}
