// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package overlay

import (
	"cmp"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aibor/stagepack/internal/fsutil"
	"github.com/aibor/stagepack/internal/tempdir"
)

// Overlay is a directory tree assembled from labeled files.
//
// All paths handed to the add methods are relative to the root directory
// and validated before anything touches the filesystem. Each path belongs
// to exactly one [Label] for the lifetime of the overlay; see
// [ConflictError].
//
// An Overlay is not safe for concurrent use. Parallel assembly works with
// one Overlay per worker, merged afterwards with [Overlay.Clone].
type Overlay struct {
	root     string
	filesets map[Label]map[string]struct{}
}

// New creates a new [Overlay] rooted at the given directory. The directory
// is created if it does not exist. The caller must ensure the overlay has
// exclusive ownership of the directory.
func New(root string) (*Overlay, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve overlay root: %w", err)
	}

	if err := fsutil.MkdirAll(absRoot); err != nil {
		return nil, fmt.Errorf("create overlay root: %w", err)
	}

	return &Overlay{
		root:     absRoot,
		filesets: make(map[Label]map[string]struct{}),
	}, nil
}

// NewTemp creates a new [Overlay] in a fresh temporary directory registered
// with [tempdir.Default].
func NewTemp() (*Overlay, error) {
	root, err := tempdir.MkdirTemp("stagepack-overlay")
	if err != nil {
		return nil, err
	}

	return New(root)
}

// Root returns the absolute root directory of the overlay.
func (o *Overlay) Root() string {
	return o.root
}

// String returns a short description of the overlay for diagnostics.
func (o *Overlay) String() string {
	return fmt.Sprintf("overlay %s (%d files in %d filesets)",
		o.root, len(o.Files()), len(o.filesets))
}

// normalizeDest cleans dest and rejects anything that is not a plain
// relative path below the root. It runs before any filesystem mutation.
func normalizeDest(op, dest string) (string, error) {
	if dest == "" || filepath.IsAbs(dest) {
		return "", &PathError{Op: op, Path: dest, Err: ErrPathNotRelative}
	}

	cleaned := filepath.Clean(dest)

	escapes := cleaned == "." || cleaned == ".." ||
		strings.HasPrefix(cleaned, ".."+string(filepath.Separator))
	if escapes {
		return "", &PathError{Op: op, Path: dest, Err: ErrPathEscapes}
	}

	return cleaned, nil
}

// tag records rel for the given label. Adding a path again under its
// current label is a no-op. Adding it under any other label fails.
func (o *Overlay) tag(rel string, label Label) error {
	for existing, paths := range o.filesets {
		if existing == label {
			continue
		}

		if _, exists := paths[rel]; exists {
			return &ConflictError{Path: rel, Existing: existing, New: label}
		}
	}

	paths, exists := o.filesets[label]
	if !exists {
		paths = make(map[string]struct{})
		o.filesets[label] = paths
	}

	paths[rel] = struct{}{}

	return nil
}

// add runs the shared sequence of all add methods: validate dest, tag it,
// create parent directories and hand the final path to materialize.
func (o *Overlay) add(
	op string,
	dest string,
	label Label,
	materialize func(destPath string) error,
) error {
	rel, err := normalizeDest(op, dest)
	if err != nil {
		return err
	}

	if err := o.tag(rel, label); err != nil {
		return err
	}

	destPath := filepath.Join(o.root, rel)

	if err := fsutil.MkdirAll(filepath.Dir(destPath)); err != nil {
		return err
	}

	return materialize(destPath)
}

// AddCopy copies the file source to dest. Adding the same dest again under
// the same label replaces the content.
func (o *Overlay) AddCopy(source, dest string, label Label) error {
	return o.add("copy", dest, label, func(destPath string) error {
		return fsutil.Copy(source, destPath)
	})
}

// AddLink makes the file source available at dest, hard linked where
// possible. Adding the same dest again under the same label keeps the
// first content since the install does not overwrite.
func (o *Overlay) AddLink(source, dest string, label Label) error {
	return o.add("link", dest, label, func(destPath string) error {
		return fsutil.Install(source, destPath, false)
	})
}

// AddSymlink creates a symbolic link at dest pointing to the absolute path
// of source. An existing link at dest is replaced.
func (o *Overlay) AddSymlink(source, dest string, label Label) error {
	return o.add("symlink", dest, label, func(destPath string) error {
		absSource, err := filepath.Abs(source)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", source, err)
		}

		if err := fsutil.Remove(destPath); err != nil {
			return err
		}

		if err := os.Symlink(absSource, destPath); err != nil {
			return fmt.Errorf("symlink %s: %w", destPath, err)
		}

		return nil
	})
}

// WriteFile writes data to dest, replacing existing content. A zero perm
// defaults to [fsutil.FileMode]. With executable set, the executable bits
// are added in all positions that have the read bit set.
func (o *Overlay) WriteFile(
	data []byte,
	dest string,
	label Label,
	perm fs.FileMode,
	executable bool,
) error {
	return o.add("write", dest, label, func(destPath string) error {
		if perm == 0 {
			perm = fsutil.FileMode
		}

		file, err := fsutil.Create(destPath, perm)
		if err != nil {
			return err
		}

		_, err = file.Write(data)
		if cerr := file.Close(); err == nil {
			err = cerr
		}

		if err != nil {
			return fmt.Errorf("write %s: %w", destPath, err)
		}

		if executable {
			return fsutil.ChmodPlusX(destPath)
		}

		return nil
	})
}

// Touch creates an empty file at dest, or updates the modification time of
// an existing one without touching its content.
func (o *Overlay) Touch(dest string, label Label) error {
	return o.add("touch", dest, label, func(destPath string) error {
		return fsutil.Touch(destPath)
	})
}

// Get returns the sorted paths belonging to the given label. An unknown
// label yields an empty slice.
func (o *Overlay) Get(label Label) []string {
	return slices.Sorted(maps.Keys(o.filesets[label]))
}

// Files returns the sorted paths of all filesets combined.
func (o *Overlay) Files() []string {
	var paths []string
	for _, fileset := range o.filesets {
		paths = slices.AppendSeq(paths, maps.Keys(fileset))
	}

	slices.Sort(paths)

	return paths
}

// Labels returns all known labels, sorted by their string form.
func (o *Overlay) Labels() []Label {
	labels := slices.Collect(maps.Keys(o.filesets))

	slices.SortFunc(labels, func(a, b Label) int {
		return cmp.Compare(a.String(), b.String())
	})

	return labels
}

// Clone materializes a full copy of the overlay in the given directory and
// returns it as a new [Overlay]. An empty into allocates a registered
// temporary directory. Every tracked path is replayed through the normal
// add sequence, so the clone establishes its own conflict invariant from
// scratch. Merging more overlays into the clone afterwards works the same
// way.
func (o *Overlay) Clone(into string) (*Overlay, error) {
	if into == "" {
		var err error

		into, err = tempdir.MkdirTemp("stagepack-overlay")
		if err != nil {
			return nil, err
		}
	}

	clone, err := New(into)
	if err != nil {
		return nil, err
	}

	if err := clone.Merge(o); err != nil {
		return nil, err
	}

	return clone, nil
}

// Merge replays every (label, path) pair of other into the overlay, hard
// linking or copying the backing files. Conflicts with already present
// filesets surface as [ConflictError].
func (o *Overlay) Merge(other *Overlay) error {
	for _, label := range other.Labels() {
		for _, rel := range other.Get(label) {
			err := o.AddLink(filepath.Join(other.root, rel), rel, label)
			if err != nil {
				return fmt.Errorf("merge %s: %w", rel, err)
			}
		}
	}

	return nil
}

// Delete removes the overlay's backing directory tree. The overlay must not
// be used afterwards.
func (o *Overlay) Delete() error {
	return fsutil.RemoveTree(o.root)
}
