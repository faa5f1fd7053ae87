package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/szvest/electron-forge/internal/logger"
)

// markerFilename marks that an import is rewriting this project right now.
// Imports are destructive read-modify-write sequences, so two concurrent runs
// over one directory would corrupt the manifest.
const markerFilename = ".forge-import-marker"

// markerFileMode restricts the marker to the current user.
const markerFileMode os.FileMode = 0o600

// errImportRunning refuses a second concurrent import of the same project.
var errImportRunning = errors.New("another import is already running in this directory")

// acquireMarker claims the project directory for this import. A marker left
// by a live process is an error; a marker whose owning process is gone is
// stale and gets cleaned up. The returned release function removes the marker.
func acquireMarker(ctx context.Context, dir string) (func(), error) {
	path := filepath.Join(dir, markerFilename)

	contents, err := os.ReadFile(path)
	if err == nil {
		pid, convErr := strconv.Atoi(strings.TrimSpace(string(contents)))
		if convErr == nil && processAlive(pid) {
			return nil, fmt.Errorf("%w (pid %d)", errImportRunning, pid)
		}

		logger.Info(ctx, "Found stale import marker, cleaning up")

		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("remove stale marker: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read import marker: %w", err)
	}

	pid := strconv.Itoa(os.Getpid())
	if err := os.WriteFile(path, []byte(pid), markerFileMode); err != nil {
		return nil, fmt.Errorf("write import marker: %w", err)
	}

	return func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warnf(ctx, "Unable to remove import marker: %v", err)
		}
	}, nil
}

// processAlive reports whether a process with the given pid still exists.
// The current process never counts as a conflict.
func processAlive(pid int) bool {
	if pid == os.Getpid() {
		return false
	}

	process, err := ps.FindProcess(pid)

	return err == nil && process != nil
}
