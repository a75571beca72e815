// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package overlay

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrPathNotRelative is returned if a destination path is empty or
	// absolute.
	ErrPathNotRelative = errors.New("path must be relative")

	// ErrPathEscapes is returned if a destination path would resolve
	// outside of the overlay root.
	ErrPathEscapes = errors.New("path escapes the overlay root")

	// ErrNotBelowPrefix is returned if a selected path is not below the
	// strip prefix of an archive serialization.
	ErrNotBelowPrefix = errors.New("path is not below the strip prefix")
)

// PathError records an error and the operation and file path that caused it.
type PathError = fs.PathError

// ConflictError is returned if a path is added under a label while it
// already belongs to a different one. It is never resolved automatically
// since picking either origin could ship wrong content.
type ConflictError struct {
	Path     string
	Existing Label
	New      Label
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("path %s already belongs to fileset %s, cannot add to %s",
		e.Path, e.Existing, e.New)
}

func (e *ConflictError) Is(other error) bool {
	_, ok := other.(*ConflictError)
	return ok
}
