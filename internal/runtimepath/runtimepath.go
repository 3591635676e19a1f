// Package runtimepath locates the per-user runtime directory holding the
// daemon socket.
package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
)

const socketName = "mmpanel.sock"

// Dir returns, in order of preference, $XDG_RUNTIME_DIR, /run/user/<uid>, or
// a private directory under /tmp that is created on demand.
func Dir() (string, error) {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir, nil
	}

	uid := os.Getuid()
	runUser := fmt.Sprintf("/run/user/%d", uid)
	if info, err := os.Stat(runUser); err == nil && info.IsDir() {
		return runUser, nil
	}

	tmp := fmt.Sprintf("/tmp/mmpanel-runtime-%d", uid)
	if err := os.MkdirAll(tmp, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmp, nil
}

// SocketPath returns the daemon IPC socket path. MMPANEL_SOCKET overrides it.
func SocketPath() (string, error) {
	if p := os.Getenv("MMPANEL_SOCKET"); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, socketName), nil
}
