// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package fsutil

import (
	"errors"
	"io/fs"
)

var (
	// ErrNotDirectory is returned if a path exists but is not a directory.
	ErrNotDirectory = errors.New("not a directory")

	// ErrNotRegularFile is returned if a source is not a regular file.
	ErrNotRegularFile = errors.New("not a regular file")
)

// PathError records an error and the operation and file path that caused it.
type PathError = fs.PathError
