// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package fsutil_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibor/stagepack/internal/fsutil"
)

func TestInstall(t *testing.T) {
	t.Run("hard link created", func(t *testing.T) {
		root := t.TempDir()
		source := filepath.Join(root, "source")
		dest := filepath.Join(root, "dest")
		require.NoError(t, os.WriteFile(source, []byte("content"), 0o644))

		require.NoError(t, fsutil.Install(source, dest, false))

		sourceInfo, err := os.Stat(source)
		require.NoError(t, err)

		destInfo, err := os.Stat(dest)
		require.NoError(t, err)

		assert.True(t, os.SameFile(sourceInfo, destInfo), "same inode")
	})

	t.Run("repeated install is a no-op", func(t *testing.T) {
		root := t.TempDir()
		source := filepath.Join(root, "source")
		dest := filepath.Join(root, "dest")
		require.NoError(t, os.WriteFile(source, []byte("content"), 0o644))

		require.NoError(t, fsutil.Install(source, dest, false))
		require.NoError(t, fsutil.Install(source, dest, false))

		content, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, []byte("content"), content)
	})

	t.Run("existing dest untouched", func(t *testing.T) {
		root := t.TempDir()
		source := filepath.Join(root, "source")
		dest := filepath.Join(root, "dest")
		require.NoError(t, os.WriteFile(source, []byte("new"), 0o644))
		require.NoError(t, os.WriteFile(dest, []byte("old"), 0o644))

		require.NoError(t, fsutil.Install(source, dest, false))

		content, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, []byte("old"), content)
	})

	t.Run("existing dest overwritten", func(t *testing.T) {
		root := t.TempDir()
		source := filepath.Join(root, "source")
		dest := filepath.Join(root, "dest")
		require.NoError(t, os.WriteFile(source, []byte("new"), 0o644))
		require.NoError(t, os.WriteFile(dest, []byte("old"), 0o644))

		require.NoError(t, fsutil.Install(source, dest, true))

		content, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), content)

		// Overwrite always copies, so dest is a distinct file.
		sourceInfo, err := os.Stat(source)
		require.NoError(t, err)

		destInfo, err := os.Stat(dest)
		require.NoError(t, err)

		assert.False(t, os.SameFile(sourceInfo, destInfo))
	})

	t.Run("missing source", func(t *testing.T) {
		root := t.TempDir()
		dest := filepath.Join(root, "dest")

		err := fsutil.Install(filepath.Join(root, "missing"), dest, false)
		require.ErrorIs(t, err, fs.ErrNotExist)

		assert.NoFileExists(t, dest)
	})
}

func TestCopy(t *testing.T) {
	t.Run("copies content and mode", func(t *testing.T) {
		root := t.TempDir()
		source := filepath.Join(root, "source")
		dest := filepath.Join(root, "dest")
		require.NoError(t, os.WriteFile(source, []byte("content"), 0o755))

		require.NoError(t, fsutil.Copy(source, dest))

		content, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, []byte("content"), content)

		destInfo, err := os.Stat(dest)
		require.NoError(t, err)
		assert.Equal(t, fs.FileMode(0o755), destInfo.Mode().Perm())

		sourceInfo, err := os.Stat(source)
		require.NoError(t, err)
		assert.False(t, os.SameFile(sourceInfo, destInfo), "distinct inode")
	})

	t.Run("replaces existing dest", func(t *testing.T) {
		root := t.TempDir()
		source := filepath.Join(root, "source")
		dest := filepath.Join(root, "dest")
		require.NoError(t, os.WriteFile(source, []byte("new"), 0o600))
		require.NoError(t, os.WriteFile(dest, []byte("old"), 0o644))

		require.NoError(t, fsutil.Copy(source, dest))

		content, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), content)

		info, err := os.Stat(dest)
		require.NoError(t, err)
		assert.Equal(t, fs.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("no temp file left behind", func(t *testing.T) {
		root := t.TempDir()
		source := filepath.Join(root, "source")
		dest := filepath.Join(root, "dest")
		require.NoError(t, os.WriteFile(source, []byte("content"), 0o644))

		require.NoError(t, fsutil.Copy(source, dest))

		entries, err := os.ReadDir(root)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("source not a regular file", func(t *testing.T) {
		root := t.TempDir()

		err := fsutil.Copy(root, filepath.Join(root, "dest"))
		require.ErrorIs(t, err, fsutil.ErrNotRegularFile)
	})
}
