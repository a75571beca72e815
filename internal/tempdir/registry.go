// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package tempdir

import (
	"fmt"
	"os"
	"sync"

	"github.com/aibor/stagepack/internal/fsutil"
)

// Default is the registry used by the package level functions.
var Default = NewRegistry()

// Registry collects temporary directories for later removal.
//
// All methods are safe for concurrent use. Removal is never implicit; the
// owner of the registry decides when [Registry.Teardown] runs.
type Registry struct {
	mu    sync.Mutex
	paths map[int]map[string]struct{}

	// getpid is swappable for tests.
	getpid func() int
}

// NewRegistry creates a new empty [Registry].
func NewRegistry() *Registry {
	return &Registry{
		paths:  make(map[int]map[string]struct{}),
		getpid: os.Getpid,
	}
}

// Register adds the given directory for removal by [Registry.Teardown]. It
// returns the path unchanged so calls can be chained.
func (r *Registry) Register(path string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	pid := r.getpid()

	dirs, exists := r.paths[pid]
	if !exists {
		dirs = make(map[string]struct{})
		r.paths[pid] = dirs
	}

	dirs[path] = struct{}{}

	return path
}

// Teardown removes all directories registered by the current process and
// forgets about them. Directories registered by other processes are left
// alone. Removal failures are ignored. Calling it again is a no-op until new
// directories are registered.
func (r *Registry) Teardown() {
	r.mu.Lock()
	pid := r.getpid()
	dirs := r.paths[pid]
	delete(r.paths, pid)
	r.mu.Unlock()

	for path := range dirs {
		_ = fsutil.RemoveTree(path)
	}
}

// Reset drops all registrations without removing anything. Required in
// processes that inherited registry state they do not own.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.paths)
}

// Register adds the given directory to [Default].
func Register(path string) string {
	return Default.Register(path)
}

// Teardown removes all directories the current process registered with
// [Default].
func Teardown() {
	Default.Teardown()
}

// MkdirTemp creates a new temporary directory in [os.TempDir] and registers
// it with [Default].
func MkdirTemp(pattern string) (string, error) {
	dir, err := os.MkdirTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("make temp dir: %w", err)
	}

	return Default.Register(dir), nil
}
