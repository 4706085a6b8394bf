package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload      CommandType = "RELOAD"
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandListWindows CommandType = "LIST_WINDOWS"
	CommandGetOutputs  CommandType = "GET_OUTPUTS"
	CommandStopSession CommandType = "STOP_SESSION"
	CommandArrange     CommandType = "ARRANGE"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// SessionInfo describes the interactive move/resize session.
type SessionInfo struct {
	Active bool   `json:"active"`
	Window uint32 `json:"window,omitempty"`
	// Edges is empty for a move.
	Edges string `json:"edges,omitempty"`
	GrabX int    `json:"grab_x"`
	GrabY int    `json:"grab_y"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Layout        string      `json:"layout"`
	WindowCount   int         `json:"window_count"`
	Focused       uint32      `json:"focused,omitempty"`
	UptimeSeconds int64       `json:"uptime_seconds"`
	DaemonRunning bool        `json:"daemon_running"`
	Session       SessionInfo `json:"session"`
}

// WindowInfo represents a single managed window
type WindowInfo struct {
	ID        uint32 `json:"id"`
	Title     string `json:"title"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     uint32 `json:"width"`
	Height    uint32 `json:"height"`
	Activated bool   `json:"activated"`
	Resizing  bool   `json:"resizing"`
}

// WindowsData represents the data returned by LIST_WINDOWS, bottom to top.
type WindowsData struct {
	Windows []WindowInfo `json:"windows"`
}

// OutputInfo represents information about a single output
type OutputInfo struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

// OutputsData represents the data returned by GET_OUTPUTS
type OutputsData struct {
	Outputs []OutputInfo `json:"outputs"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
