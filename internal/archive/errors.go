// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package archive

import (
	"errors"
	"io/fs"
)

var (
	// ErrNotRegularFile is returned if a source is not a regular file.
	ErrNotRegularFile = errors.New("not a regular file")

	// ErrInsecurePath is returned if an archive entry would be extracted
	// outside of the destination directory.
	ErrInsecurePath = errors.New("entry path escapes destination")
)

// PathError records an error and the operation and file path that caused it.
type PathError = fs.PathError
