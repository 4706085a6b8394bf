package ipc

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeHandler struct {
	mu        sync.Mutex
	reloadErr error
	reloads   int
	stops     int
	arranges  int
}

func (h *fakeHandler) Status() StatusData {
	return StatusData{
		Layout:      "columns",
		WindowCount: 2,
		Focused:     7,
		Session:     SessionInfo{Active: true, Window: 7, Edges: "bottom|right", GrabX: 10, GrabY: 20},
	}
}

func (h *fakeHandler) Windows() []WindowInfo {
	return []WindowInfo{
		{ID: 3, Title: "xterm", Width: 100, Height: 50},
		{ID: 7, Title: "editor", X: 100, Width: 200, Height: 80, Activated: true, Resizing: true},
	}
}

func (h *fakeHandler) Outputs() ([]OutputInfo, error) {
	return []OutputInfo{{Name: "HDMI-1", Width: 1920, Height: 1080}}, nil
}

func (h *fakeHandler) Reload() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reloads++
	return h.reloadErr
}

func (h *fakeHandler) StopSession() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stops++
}

func (h *fakeHandler) Arrange() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.arranges++
}

func startServer(t *testing.T, h Handler) (*Server, *Client) {
	t.Helper()
	// Unix socket paths are length limited; keep the directory short.
	dir, err := os.MkdirTemp("", "fwm")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	socket := filepath.Join(dir, "s.sock")
	srv := NewServer(socket, h, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Stop)
	return srv, NewClient(socket)
}

func TestServer_GetStatus(t *testing.T) {
	_, client := startServer(t, &fakeHandler{})

	status, err := client.GetStatus()
	require.NoError(t, err)
	require.True(t, status.DaemonRunning)
	require.Equal(t, "columns", status.Layout)
	require.Equal(t, 2, status.WindowCount)
	require.Equal(t, SessionInfo{Active: true, Window: 7, Edges: "bottom|right", GrabX: 10, GrabY: 20}, status.Session)
	require.NoError(t, client.Ping())
}

func TestServer_ListWindowsAndOutputs(t *testing.T) {
	h := &fakeHandler{}
	_, client := startServer(t, h)

	wins, err := client.ListWindows()
	require.NoError(t, err)
	require.Equal(t, h.Windows(), wins.Windows)

	outs, err := client.GetOutputs()
	require.NoError(t, err)
	require.Len(t, outs.Outputs, 1)
	require.Equal(t, "HDMI-1", outs.Outputs[0].Name)
}

func TestServer_Commands(t *testing.T) {
	h := &fakeHandler{}
	_, client := startServer(t, h)

	require.NoError(t, client.StopSession())
	require.NoError(t, client.Arrange())
	require.NoError(t, client.Reload())

	h.mu.Lock()
	defer h.mu.Unlock()
	require.Equal(t, 1, h.stops)
	require.Equal(t, 1, h.arranges)
	require.Equal(t, 1, h.reloads)
}

func TestServer_ReloadErrorIsReported(t *testing.T) {
	_, client := startServer(t, &fakeHandler{reloadErr: errors.New("bad yaml")})

	err := client.Reload()
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad yaml")
}

func TestServer_UnknownAndMalformedRequests(t *testing.T) {
	srv, client := startServer(t, &fakeHandler{})

	err := client.command("NOPE")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Unknown command")

	conn, err := net.Dial("unix", srv.SocketPath())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("{not json\n"))
	require.NoError(t, err)
	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.Contains(line, `"status":"ERROR"`), line)
}

func TestClient_NotRunning(t *testing.T) {
	client := NewClient(filepath.Join(t.TempDir(), "missing.sock"))
	err := client.Ping()
	require.Error(t, err)
	require.Contains(t, err.Error(), "is it running?")
}
