// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

// linkOutcome is the result of a hard link attempt.
type linkOutcome int

const (
	linkFailed linkOutcome = iota
	linkCreated
	linkDestExists
	linkCrossDevice
	linkNoPermission
	linkUnsupported
)

// classifyLink sorts the result of a hard link attempt into the outcomes
// [Install] has a strategy for. Errors without a fallback are returned as is.
func classifyLink(err error) (linkOutcome, error) {
	switch {
	case err == nil:
		return linkCreated, nil
	case errors.Is(err, unix.EEXIST):
		return linkDestExists, nil
	case errors.Is(err, unix.EXDEV):
		return linkCrossDevice, nil
	case errors.Is(err, unix.EPERM), errors.Is(err, unix.EACCES):
		return linkNoPermission, nil
	case errors.Is(err, unix.ENOTSUP):
		return linkUnsupported, nil
	default:
		return linkFailed, err
	}
}

// Install makes source available at dest, preferring a hard link over a
// copy. An existing dest is left alone, unless overwrite is set in which case
// its content is replaced.
//
// Hard links are not available on all setups, e.g. across filesystem
// boundaries or on filesystems without hard link support. Those cases fall
// back to [Copy] silently. Concurrent installs for the same dest are safe in
// the sense that readers never observe a partially written file.
func Install(source, dest string, overwrite bool) error {
	outcome, err := classifyLink(os.Link(source, dest))
	if err != nil {
		return fmt.Errorf("link %s to %s: %w", source, dest, err)
	}

	switch outcome {
	case linkCreated:
		return nil
	case linkDestExists:
		if !overwrite {
			return nil
		}
	case linkUnsupported:
		// Keep the semantics of the link based path: an existing dest is
		// only replaced when overwrite is set.
		if !overwrite {
			_, err := os.Lstat(dest)
			if err == nil {
				return nil
			}

			if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("stat %s: %w", dest, err)
			}
		}
	case linkCrossDevice, linkNoPermission:
	case linkFailed:
	}

	return Copy(source, dest)
}

// Copy copies the regular file source to dest, replacing an existing dest.
// The content is written to a unique temporary sibling first and moved into
// place with a rename, so dest never holds a partially written file. The
// source's permission bits are copied as well.
func Copy(source, dest string) error {
	src, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open %s: %w", source, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", source, err)
	}

	if !info.Mode().IsRegular() {
		return &PathError{Op: "copy", Path: source, Err: ErrNotRegularFile}
	}

	perm := info.Mode().Perm()
	tempDest := dest + uuid.NewString()

	file, err := os.OpenFile(tempDest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("create %s: %w", tempDest, err)
	}

	_, err = io.Copy(file, src)
	if cerr := file.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		_ = os.Remove(tempDest)
		return fmt.Errorf("write %s: %w", tempDest, err)
	}

	// The create mode is masked by the umask.
	if err := os.Chmod(tempDest, perm); err != nil {
		_ = os.Remove(tempDest)
		return fmt.Errorf("chmod %s: %w", tempDest, err)
	}

	if err := os.Rename(tempDest, dest); err != nil {
		_ = os.Remove(tempDest)
		return fmt.Errorf("rename %s to %s: %w", tempDest, dest, err)
	}

	return nil
}
