package mcp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/floatwm/internal/ipc"
)

type fakeDaemon struct {
	status   ipc.StatusData
	windows  []ipc.WindowInfo
	err      error
	stops    int
	arranges int
	reloads  int
}

func (d *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	if d.err != nil {
		return nil, d.err
	}
	st := d.status
	return &st, nil
}

func (d *fakeDaemon) ListWindows() (*ipc.WindowsData, error) {
	if d.err != nil {
		return nil, d.err
	}
	return &ipc.WindowsData{Windows: d.windows}, nil
}

func (d *fakeDaemon) GetOutputs() (*ipc.OutputsData, error) {
	if d.err != nil {
		return nil, d.err
	}
	return &ipc.OutputsData{Outputs: []ipc.OutputInfo{{Name: "eDP-1", Width: 1280, Height: 800}}}, nil
}

func (d *fakeDaemon) StopSession() error {
	d.stops++
	d.status.Session = ipc.SessionInfo{}
	return d.err
}

func (d *fakeDaemon) Arrange() error {
	d.arranges++
	return d.err
}

func (d *fakeDaemon) Reload() error {
	d.reloads++
	return d.err
}

func newTestServer(d *fakeDaemon) *Server {
	return NewServer(d, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGetStatus(t *testing.T) {
	d := &fakeDaemon{status: ipc.StatusData{
		DaemonRunning: true,
		Layout:        "grid",
		WindowCount:   3,
		Session:       ipc.SessionInfo{Active: true, Window: 9},
	}}
	s := newTestServer(d)

	_, out, err := s.handleGetStatus(context.Background(), nil, EmptyInput{})
	require.NoError(t, err)
	require.True(t, out.Running)
	require.Equal(t, "grid", out.Layout)
	require.Equal(t, 3, out.WindowCount)
	require.Equal(t, uint32(9), out.Session.Window)
}

func TestGetStatus_DaemonDown(t *testing.T) {
	s := newTestServer(&fakeDaemon{err: errors.New("failed to connect")})

	_, _, err := s.handleGetStatus(context.Background(), nil, EmptyInput{})
	require.Error(t, err)
}

func TestListWindows_FiltersByTitle(t *testing.T) {
	d := &fakeDaemon{windows: []ipc.WindowInfo{
		{ID: 1, Title: "XTerm"},
		{ID: 2, Title: "Firefox"},
		{ID: 3, Title: "uxterm: htop"},
	}}
	s := newTestServer(d)

	_, out, err := s.handleListWindows(context.Background(), nil, ListWindowsInput{Title: "xterm"})
	require.NoError(t, err)
	require.Len(t, out.Windows, 2)
	require.Equal(t, uint32(1), out.Windows[0].ID)
	require.Equal(t, uint32(3), out.Windows[1].ID)

	_, out, err = s.handleListWindows(context.Background(), nil, ListWindowsInput{})
	require.NoError(t, err)
	require.Len(t, out.Windows, 3)
}

func TestListOutputs(t *testing.T) {
	s := newTestServer(&fakeDaemon{})

	_, out, err := s.handleListOutputs(context.Background(), nil, EmptyInput{})
	require.NoError(t, err)
	require.Len(t, out.Outputs, 1)
	require.Equal(t, "eDP-1", out.Outputs[0].Name)
}

func TestStopSession(t *testing.T) {
	d := &fakeDaemon{status: ipc.StatusData{Session: ipc.SessionInfo{Active: true, Window: 5}}}
	s := newTestServer(d)

	res, out, err := s.handleStopSession(context.Background(), nil, EmptyInput{})
	require.NoError(t, err)
	require.True(t, out.WasActive)
	require.Equal(t, uint32(5), out.Window)
	require.Equal(t, 1, d.stops)

	text, ok := res.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)
	require.Equal(t, "Stopped session on window 5", text.Text)

	// Idle controller: still succeeds.
	_, out, err = s.handleStopSession(context.Background(), nil, EmptyInput{})
	require.NoError(t, err)
	require.False(t, out.WasActive)
	require.Equal(t, 2, d.stops)
}

func TestArrangeAndReload(t *testing.T) {
	d := &fakeDaemon{}
	s := newTestServer(d)

	_, out, err := s.handleArrange(context.Background(), nil, EmptyInput{})
	require.NoError(t, err)
	require.True(t, out.OK)
	require.Equal(t, 1, d.arranges)

	_, out, err = s.handleReload(context.Background(), nil, EmptyInput{})
	require.NoError(t, err)
	require.True(t, out.OK)
	require.Equal(t, 1, d.reloads)

	d.err = errors.New("layout: unknown value")
	_, _, err = s.handleReload(context.Background(), nil, EmptyInput{})
	require.ErrorContains(t, err, "reload failed")
}
