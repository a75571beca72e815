// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

const (
	// DirMode is the mode all directories are created with, independent of
	// the process umask.
	DirMode fs.FileMode = 0o755

	// FileMode is the default mode for created regular files.
	FileMode fs.FileMode = 0o644
)

// MkdirAll creates the named directory along with any missing parents. It
// succeeds if the directory already exists. Unlike [os.MkdirAll] the mode of
// created directories is fixed to [DirMode] regardless of the process umask.
func MkdirAll(dir string) error {
	var missing []string

	path := filepath.Clean(dir)

	for {
		info, err := os.Stat(path)
		if err == nil {
			if !info.IsDir() {
				return &PathError{
					Op:   "mkdir",
					Path: path,
					Err:  ErrNotDirectory,
				}
			}

			break
		}

		// ENOTDIR means some ancestor is a file. Keep walking up so the
		// offender itself gets reported.
		if !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, unix.ENOTDIR) {
			return fmt.Errorf("stat %s: %w", path, err)
		}

		missing = append(missing, path)

		parent := filepath.Dir(path)
		if parent == path {
			break
		}

		path = parent
	}

	// Create top-down. Mkdir modes are masked by the umask, so the mode is
	// set explicitly afterwards.
	for idx := len(missing) - 1; idx >= 0; idx-- {
		err := os.Mkdir(missing[idx], DirMode)
		if err != nil && !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("mkdir %s: %w", missing[idx], err)
		}

		if err := os.Chmod(missing[idx], DirMode); err != nil {
			return fmt.Errorf("chmod %s: %w", missing[idx], err)
		}
	}

	return nil
}

// Create creates the named file with the given permissions, truncating it if
// it already exists. Missing parent directories are created.
func Create(name string, perm fs.FileMode) (*os.File, error) {
	if err := MkdirAll(filepath.Dir(name)); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", name, err)
	}

	if err := file.Chmod(perm); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("chmod %s: %w", name, err)
	}

	return file, nil
}

// Remove removes the named file or empty directory. It succeeds if the file
// does not exist.
func Remove(name string) error {
	err := os.Remove(name)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}

	return nil
}

// RemoveTree removes the named directory and anything it contains. It
// succeeds if the directory does not exist.
func RemoveTree(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove tree %s: %w", dir, err)
	}

	return nil
}

// Touch creates the named file if it does not exist and sets its modification
// time to the current time. Existing content is left alone. Missing parent
// directories are created.
func Touch(name string) error {
	if err := MkdirAll(filepath.Dir(name)); err != nil {
		return err
	}

	file, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_APPEND, FileMode)
	if err != nil {
		return fmt.Errorf("touch %s: %w", name, err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}

	now := time.Now()
	if err := os.Chtimes(name, now, now); err != nil {
		return fmt.Errorf("chtimes %s: %w", name, err)
	}

	return nil
}

// ChmodPlusX adds the executable bit in all positions that have the read bit
// set, like "chmod +X" does. Bits outside the permission mask are cleared.
func ChmodPlusX(name string) error {
	info, err := os.Stat(name)
	if err != nil {
		return fmt.Errorf("stat %s: %w", name, err)
	}

	mode := info.Mode().Perm()
	if mode&0o400 != 0 {
		mode |= 0o100
	}

	if mode&0o040 != 0 {
		mode |= 0o010
	}

	if mode&0o004 != 0 {
		mode |= 0o001
	}

	if err := os.Chmod(name, mode); err != nil {
		return fmt.Errorf("chmod %s: %w", name, err)
	}

	return nil
}

// ChmodPlusW adds the owner write bit. Bits outside the permission mask are
// cleared.
func ChmodPlusW(name string) error {
	info, err := os.Stat(name)
	if err != nil {
		return fmt.Errorf("stat %s: %w", name, err)
	}

	if err := os.Chmod(name, info.Mode().Perm()|0o200); err != nil {
		return fmt.Errorf("chmod %s: %w", name, err)
	}

	return nil
}

// IsExecutable reports whether path is a regular file the calling process can
// read and execute.
func IsExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}

	return unix.Access(path, unix.R_OK|unix.X_OK) == nil
}
