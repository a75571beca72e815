// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aibor/stagepack/internal/overlay"
)

const (
	methodCopy    = "copy"
	methodLink    = "link"
	methodSymlink = "symlink"
	methodWrite   = "write"
	methodTouch   = "touch"
)

// ManifestEntry describes a single file to stage. Upstream tooling decides
// what ends up in the manifest; the entries are applied verbatim.
type ManifestEntry struct {
	// Source is the file to stage, required by the copy, link and symlink
	// methods.
	Source string `yaml:"source"`

	// Dest is the path below the overlay root. Required.
	Dest string `yaml:"dest"`

	// Label attributes the entry to an origin. Absent means unlabeled,
	// which is distinct from an empty label name.
	Label *string `yaml:"label"`

	// Method is one of copy, link, symlink, write and touch. It defaults
	// to link if source is set, write if content is set and touch
	// otherwise.
	Method string `yaml:"method"`

	// Content is the file content for the write method.
	Content string `yaml:"content"`

	// Mode is the file mode for the write method.
	Mode fs.FileMode `yaml:"mode"`

	// Executable marks a written file executable.
	Executable bool `yaml:"executable"`
}

// Manifest is the list of files the command stages and archives.
type Manifest struct {
	Entries []ManifestEntry `yaml:"entries"`
}

// ReadManifest parses and validates a manifest read from r.
func ReadManifest(r io.Reader) (*Manifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var manifest Manifest

	err := decoder.Decode(&manifest)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	for idx := range manifest.Entries {
		if err := manifest.Entries[idx].normalize(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", idx, err)
		}
	}

	return &manifest, nil
}

// ReadManifestFile parses and validates the manifest file at path.
func ReadManifestFile(path string) (*Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer file.Close()

	manifest, err := ReadManifest(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return manifest, nil
}

// normalize fills in the default method and checks the entry's attributes
// fit the method.
func (e *ManifestEntry) normalize() error {
	if e.Dest == "" {
		return ErrMissingDest
	}

	if e.Method == "" {
		switch {
		case e.Source != "":
			e.Method = methodLink
		case e.Content != "":
			e.Method = methodWrite
		default:
			e.Method = methodTouch
		}
	}

	switch e.Method {
	case methodCopy, methodLink, methodSymlink:
		if e.Source == "" {
			return fmt.Errorf("%w by method %s", ErrMissingSource, e.Method)
		}

		if e.Content != "" {
			return fmt.Errorf("%w: content not usable with method %s",
				ErrInvalidEntry, e.Method)
		}
	case methodWrite:
		if e.Source != "" {
			return fmt.Errorf("%w: source not usable with method write",
				ErrInvalidEntry)
		}
	case methodTouch:
		if e.Source != "" || e.Content != "" {
			return fmt.Errorf("%w: touch takes neither source nor content",
				ErrInvalidEntry)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownMethod, e.Method)
	}

	if e.Executable && e.Method != methodWrite {
		return fmt.Errorf("%w: executable only usable with method write",
			ErrInvalidEntry)
	}

	if e.Mode != 0 && e.Method != methodWrite {
		return fmt.Errorf("%w: mode only usable with method write",
			ErrInvalidEntry)
	}

	return nil
}

func (e *ManifestEntry) label() overlay.Label {
	if e.Label == nil {
		return overlay.Label{}
	}

	return overlay.Labeled(*e.Label)
}

func (e *ManifestEntry) apply(ovl *overlay.Overlay) error {
	label := e.label()

	switch e.Method {
	case methodCopy:
		return ovl.AddCopy(e.Source, e.Dest, label)
	case methodLink:
		return ovl.AddLink(e.Source, e.Dest, label)
	case methodSymlink:
		return ovl.AddSymlink(e.Source, e.Dest, label)
	case methodWrite:
		return ovl.WriteFile([]byte(e.Content), e.Dest, label, e.Mode, e.Executable)
	case methodTouch:
		return ovl.Touch(e.Dest, label)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownMethod, e.Method)
	}
}

// Apply stages all manifest entries in the given overlay.
func (m *Manifest) Apply(ovl *overlay.Overlay) error {
	for idx, entry := range m.Entries {
		if err := entry.apply(ovl); err != nil {
			return fmt.Errorf("entry %d (%s): %w", idx, entry.Dest, err)
		}
	}

	return nil
}
