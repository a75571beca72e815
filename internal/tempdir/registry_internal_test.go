// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package tempdir

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryPidIsolation(t *testing.T) {
	pid := 1000

	registry := NewRegistry()
	registry.getpid = func() int { return pid }

	root := t.TempDir()

	parentDir := filepath.Join(root, "parent")
	require.NoError(t, os.Mkdir(parentDir, 0o755))
	registry.Register(parentDir)

	// Same registry state as seen by a forked child process.
	pid = 1001

	childDir := filepath.Join(root, "child")
	require.NoError(t, os.Mkdir(childDir, 0o755))
	registry.Register(childDir)

	registry.Teardown()

	assert.NoDirExists(t, childDir, "own directory removed")
	assert.DirExists(t, parentDir, "foreign directory kept")
}

func TestRegistryReset(t *testing.T) {
	registry := NewRegistry()

	root := t.TempDir()
	dir := filepath.Join(root, "dir")
	require.NoError(t, os.Mkdir(dir, 0o755))

	registry.Register(dir)
	registry.Reset()
	registry.Teardown()

	assert.DirExists(t, dir)
}
