// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFormat is returned for archive formats the command does
	// not support.
	ErrUnknownFormat = errors.New("unknown archive format")

	// ErrMissingDest is returned for manifest entries without a dest.
	ErrMissingDest = errors.New("dest is required")

	// ErrMissingSource is returned for manifest entries whose method
	// requires a source.
	ErrMissingSource = errors.New("source is required")

	// ErrUnknownMethod is returned for manifest entries with a method the
	// command does not support.
	ErrUnknownMethod = errors.New("unknown method")

	// ErrInvalidEntry is returned for manifest entries with attributes
	// their method cannot use.
	ErrInvalidEntry = errors.New("invalid entry")
)

// ParseArgsError wraps errors that occur during argument parsing.
type ParseArgsError struct {
	err error
	msg string
}

func (e *ParseArgsError) Error() string {
	if e.err == nil {
		return e.msg
	}

	return fmt.Sprintf("%s: %v", e.msg, e.err)
}

func (e *ParseArgsError) Is(other error) bool {
	_, ok := other.(*ParseArgsError)
	return ok
}

func (e *ParseArgsError) Unwrap() error {
	return e.err
}
