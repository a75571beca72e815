// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package fsutil_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/aibor/stagepack/internal/fsutil"
)

func TestMkdirAll(t *testing.T) {
	t.Run("creates missing parents", func(t *testing.T) {
		root := t.TempDir()
		dir := filepath.Join(root, "a", "b", "c")

		require.NoError(t, fsutil.MkdirAll(dir))

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("mode ignores umask", func(t *testing.T) {
		oldMask := unix.Umask(0o077)
		defer unix.Umask(oldMask)

		root := t.TempDir()
		dir := filepath.Join(root, "a", "b")

		require.NoError(t, fsutil.MkdirAll(dir))

		for _, path := range []string{filepath.Join(root, "a"), dir} {
			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, fsutil.DirMode, info.Mode().Perm(), path)
		}
	})

	t.Run("existing dir", func(t *testing.T) {
		require.NoError(t, fsutil.MkdirAll(t.TempDir()))
	})

	t.Run("ancestor is a file", func(t *testing.T) {
		root := t.TempDir()
		file := filepath.Join(root, "file")
		require.NoError(t, os.WriteFile(file, nil, 0o644))

		err := fsutil.MkdirAll(filepath.Join(file, "sub"))
		require.ErrorIs(t, err, fsutil.ErrNotDirectory)
	})
}

func TestCreate(t *testing.T) {
	t.Run("creates parents and truncates", func(t *testing.T) {
		root := t.TempDir()
		name := filepath.Join(root, "sub", "file")

		file, err := fsutil.Create(name, 0o640)
		require.NoError(t, err)

		_, err = file.WriteString("content")
		require.NoError(t, err)
		require.NoError(t, file.Close())

		file, err = fsutil.Create(name, 0o640)
		require.NoError(t, err)
		require.NoError(t, file.Close())

		content, err := os.ReadFile(name)
		require.NoError(t, err)
		assert.Empty(t, content)
	})

	t.Run("mode ignores umask", func(t *testing.T) {
		oldMask := unix.Umask(0o077)
		defer unix.Umask(oldMask)

		root := t.TempDir()
		name := filepath.Join(root, "file")

		file, err := fsutil.Create(name, 0o755)
		require.NoError(t, err)
		require.NoError(t, file.Close())

		info, err := os.Stat(name)
		require.NoError(t, err)
		assert.Equal(t, fs.FileMode(0o755), info.Mode().Perm())
	})
}

func TestRemove(t *testing.T) {
	root := t.TempDir()
	name := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(name, nil, 0o644))

	require.NoError(t, fsutil.Remove(name))
	assert.NoFileExists(t, name)

	// Absent files are not an error.
	require.NoError(t, fsutil.Remove(name))
}

func TestRemoveTree(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "dir")
	require.NoError(t, fsutil.MkdirAll(filepath.Join(dir, "sub")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "file"), []byte("x"), 0o644))

	require.NoError(t, fsutil.RemoveTree(dir))
	assert.NoDirExists(t, dir)

	// Absent trees are not an error.
	require.NoError(t, fsutil.RemoveTree(dir))
}

func TestTouch(t *testing.T) {
	t.Run("creates file with parents", func(t *testing.T) {
		root := t.TempDir()
		name := filepath.Join(root, "sub", "file")

		require.NoError(t, fsutil.Touch(name))
		assert.FileExists(t, name)
	})

	t.Run("keeps content and bumps mtime", func(t *testing.T) {
		root := t.TempDir()
		name := filepath.Join(root, "file")
		require.NoError(t, os.WriteFile(name, []byte("content"), 0o644))

		past := time.Now().Add(-time.Hour)
		require.NoError(t, os.Chtimes(name, past, past))

		require.NoError(t, fsutil.Touch(name))

		content, err := os.ReadFile(name)
		require.NoError(t, err)
		assert.Equal(t, []byte("content"), content)

		info, err := os.Stat(name)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), info.ModTime(), time.Minute)
	})
}

func TestChmodPlusX(t *testing.T) {
	tests := []struct {
		name     string
		mode     fs.FileMode
		expected fs.FileMode
	}{
		{
			name:     "readable by all",
			mode:     0o644,
			expected: 0o755,
		},
		{
			name:     "readable by owner",
			mode:     0o600,
			expected: 0o700,
		},
		{
			name:     "already executable",
			mode:     0o755,
			expected: 0o755,
		},
		{
			name:     "no read bits",
			mode:     0o200,
			expected: 0o200,
		},
		{
			name:     "setuid cleared",
			mode:     0o644 | fs.ModeSetuid,
			expected: 0o755,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			name := filepath.Join(root, "file")
			require.NoError(t, os.WriteFile(name, nil, 0o644))
			require.NoError(t, os.Chmod(name, tt.mode))

			require.NoError(t, fsutil.ChmodPlusX(name))

			info, err := os.Stat(name)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, info.Mode())
		})
	}
}

func TestChmodPlusW(t *testing.T) {
	root := t.TempDir()
	name := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(name, nil, 0o444))

	require.NoError(t, fsutil.ChmodPlusW(name))

	info, err := os.Stat(name)
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o644), info.Mode().Perm())
}

func TestIsExecutable(t *testing.T) {
	root := t.TempDir()

	executable := filepath.Join(root, "exec")
	require.NoError(t, os.WriteFile(executable, []byte("#!/bin/sh\n"), 0o755))

	plain := filepath.Join(root, "plain")
	require.NoError(t, os.WriteFile(plain, nil, 0o644))

	assert.True(t, fsutil.IsExecutable(executable))
	assert.False(t, fsutil.IsExecutable(plain))
	assert.False(t, fsutil.IsExecutable(root), "directory")
	assert.False(t, fsutil.IsExecutable(filepath.Join(root, "missing")))
}
