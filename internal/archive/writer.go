// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package archive

import (
	"io"
	"io/fs"
	"time"
)

// DeterministicModTime is the fixed modification time for reproducible
// archives. It is the earliest timestamp the zip format can represent.
var DeterministicModTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Writer defines the archive entry writer interface.
//
// Names are slash separated paths relative to the archive root. WriteRegular
// consumes source until EOF. Metadata is taken from info; each format decides
// which parts of it it can represent.
type Writer interface {
	WriteRegular(name string, source io.Reader, info fs.FileInfo) error
	WriteDirectory(name string, info fs.FileInfo) error
	WriteLink(name string, target string, info fs.FileInfo) error
}

type config struct {
	// fixedModTime replaces all source modification times if set.
	fixedModTime time.Time
	// store disables compression for formats that compress.
	store bool
}

func (c *config) modTime(sourceTime time.Time) time.Time {
	if !c.fixedModTime.IsZero() {
		return c.fixedModTime
	}

	return sourceTime
}

// Option adjusts how archive writers represent entries.
type Option func(*config)

// WithFixedModTime sets the given modification time on all entries instead
// of the source file's, making output independent of when the sources were
// written. Usually used with [DeterministicModTime].
func WithFixedModTime(modTime time.Time) Option {
	return func(c *config) {
		c.fixedModTime = modTime
	}
}

// WithStoredEntries disables compression. Entries are stored as is.
func WithStoredEntries() Option {
	return func(c *config) {
		c.store = true
	}
}
