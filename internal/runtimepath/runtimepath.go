package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvSocket overrides the control socket location.
const EnvSocket = "FLOATWM_SOCKET"

// Dir returns the runtime directory holding the control socket. Priority:
// 1) XDG_RUNTIME_DIR (if set)
// 2) /run/user/<uid> (if present)
// 3) /tmp/floatwm-runtime-<uid> (created)
func Dir() (string, error) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}

	uid := os.Getuid()
	runUserDir := fmt.Sprintf("/run/user/%d", uid)
	if info, err := os.Stat(runUserDir); err == nil && info.IsDir() {
		return runUserDir, nil
	}

	tmpDir := fmt.Sprintf("/tmp/floatwm-runtime-%d", uid)
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmpDir, nil
}

// SocketPath returns the control socket path. The socket name carries the
// display so two window managers on different displays do not collide.
func SocketPath(display string) (string, error) {
	if p := os.Getenv(EnvSocket); p != "" {
		return p, nil
	}
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(runtimeDir, socketName(display)), nil
}

func socketName(display string) string {
	if display == "" {
		display = os.Getenv("DISPLAY")
	}
	suffix := ""
	for _, r := range display {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '.':
			suffix += string(r)
		}
	}
	if suffix == "" {
		return "floatwm.sock"
	}
	return "floatwm-" + suffix + ".sock"
}
