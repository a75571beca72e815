// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package overlay

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/aibor/stagepack/internal/archive"
	"github.com/aibor/stagepack/internal/fsutil"
)

// ArchiveOptions selects and names the overlay paths written by
// [Overlay.WriteArchive].
type ArchiveOptions struct {
	// Labels selects the filesets to serialize. Nil selects all tracked
	// paths. Note that the zero [Label] selects the unlabeled fileset.
	Labels []Label

	// StripPrefix is removed from the front of all entry names. Selected
	// paths outside of it are an error. The prefix directory itself does
	// not become an entry.
	StripPrefix string

	// Exclude skips individual files. It is called with the absolute
	// source path right before an entry would be written, so excluded
	// files are never read. It does not suppress parent directory entries
	// needed by included siblings.
	Exclude func(sourcePath string) bool

	// PreserveSymlinks writes symbolic links as link entries. Without it,
	// links to regular files are written as regular entries with the
	// target's content, and links to directories are skipped.
	PreserveSymlinks bool
}

// WriteArchive writes the selected overlay paths to w.
//
// The output depends only on the selected content: selected paths are
// visited in lexicographic order, directory contents again in
// lexicographic order, independent of how the filesystem enumerates them.
// Every parent directory of an entry is written exactly once, before the
// first entry below it.
func (o *Overlay) WriteArchive(w archive.Writer, opts ArchiveOptions) error {
	s := &serializer{
		overlay: o,
		writer:  w,
		opts:    opts,
		written: make(map[string]struct{}),
	}

	if opts.StripPrefix != "" {
		prefix, err := normalizeDest("serialize", opts.StripPrefix)
		if err != nil {
			return err
		}

		s.prefix = prefix
	}

	for _, rel := range o.selectPaths(opts.Labels) {
		if err := s.writePath(rel); err != nil {
			return err
		}
	}

	return nil
}

// selectPaths returns the sorted union of the path sets of the given
// labels, or all tracked paths if labels is nil.
func (o *Overlay) selectPaths(labels []Label) []string {
	if labels == nil {
		return o.Files()
	}

	var paths []string
	for _, label := range labels {
		paths = append(paths, o.Get(label)...)
	}

	slices.Sort(paths)

	return slices.Compact(paths)
}

type serializer struct {
	overlay *Overlay
	writer  archive.Writer
	opts    ArchiveOptions
	prefix  string
	written map[string]struct{}
}

// writePath writes the entry for a single selected overlay path, or all
// entries below it if it is a directory.
func (s *serializer) writePath(rel string) error {
	sourcePath := filepath.Join(s.overlay.root, rel)

	info, err := os.Lstat(sourcePath)
	if err != nil {
		return fmt.Errorf("stat %s: %w", sourcePath, err)
	}

	if info.Mode()&fs.ModeSymlink != 0 {
		return s.writeSymlink(rel, sourcePath)
	}

	switch {
	case info.IsDir():
		return s.writeDirContents(rel, sourcePath)
	case info.Mode().IsRegular():
		return s.writeRegular(rel, sourcePath, info)
	default:
		slog.Debug("Skipping unsupported file type",
			slog.String("path", rel),
			slog.Any("mode", info.Mode()))

		return nil
	}
}

// writeDirContents writes the entries for all files below the given
// directory. Walking an [fs.FS] rooted at the directory visits entries in
// lexicographic order, independent of filesystem enumeration order.
// Directories materialize as parent entries of the files they contain, so
// empty directories leave no trace.
func (s *serializer) writeDirContents(rel, sourcePath string) error {
	fsys := os.DirFS(sourcePath)

	walk := func(inner string, entry fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", sourcePath, err)
		}

		if entry.IsDir() {
			return nil
		}

		innerRel := filepath.Join(rel, filepath.FromSlash(inner))
		innerSource := filepath.Join(sourcePath, filepath.FromSlash(inner))

		if entry.Type()&fs.ModeSymlink != 0 {
			return s.writeSymlink(innerRel, innerSource)
		}

		if !entry.Type().IsRegular() {
			slog.Debug("Skipping unsupported file type",
				slog.String("path", innerRel),
				slog.Any("mode", entry.Type()))

			return nil
		}

		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", innerSource, err)
		}

		return s.writeRegular(innerRel, innerSource, info)
	}

	return fs.WalkDir(fsys, ".", walk)
}

// writeRegular writes the entry for a regular file.
func (s *serializer) writeRegular(rel, sourcePath string, info fs.FileInfo) error {
	if s.excluded(rel, sourcePath) {
		return nil
	}

	name, err := s.entryName(rel)
	if err != nil {
		return err
	}

	if err := s.writeParentDirs(name); err != nil {
		return err
	}

	file, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("open %s: %w", sourcePath, err)
	}
	defer file.Close()

	if err := s.writer.WriteRegular(name, file, info); err != nil {
		return fmt.Errorf("write entry %s: %w", name, err)
	}

	return nil
}

// writeSymlink writes the entry for a symbolic link. Links are preserved
// or followed per [ArchiveOptions.PreserveSymlinks].
func (s *serializer) writeSymlink(rel, sourcePath string) error {
	if !s.opts.PreserveSymlinks {
		return s.writeSymlinkTarget(rel, sourcePath)
	}

	if s.excluded(rel, sourcePath) {
		return nil
	}

	name, err := s.entryName(rel)
	if err != nil {
		return err
	}

	target, err := os.Readlink(sourcePath)
	if err != nil {
		return fmt.Errorf("readlink %s: %w", sourcePath, err)
	}

	info, err := os.Lstat(sourcePath)
	if err != nil {
		return fmt.Errorf("stat %s: %w", sourcePath, err)
	}

	if err := s.writeParentDirs(name); err != nil {
		return err
	}

	if err := s.writer.WriteLink(name, target, info); err != nil {
		return fmt.Errorf("write entry %s: %w", name, err)
	}

	return nil
}

// writeSymlinkTarget follows a symbolic link and writes the target's
// content as a regular entry. Links to directories are not descended into
// since link cycles would make the walk unbounded.
func (s *serializer) writeSymlinkTarget(rel, sourcePath string) error {
	info, err := os.Stat(sourcePath)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("Skipping dangling symlink", slog.String("path", rel))

		return nil
	}

	if err != nil {
		return fmt.Errorf("stat %s: %w", sourcePath, err)
	}

	if !info.Mode().IsRegular() {
		slog.Debug("Skipping symlink to non-regular file",
			slog.String("path", rel),
			slog.Any("mode", info.Mode()))

		return nil
	}

	return s.writeRegular(rel, sourcePath, info)
}

func (s *serializer) excluded(rel, sourcePath string) bool {
	if s.opts.Exclude == nil || !s.opts.Exclude(sourcePath) {
		return false
	}

	slog.Debug("Excluding file", slog.String("path", rel))

	return true
}

// entryName translates an overlay relative path into the slash separated
// archive entry name, stripping the configured prefix.
func (s *serializer) entryName(rel string) (string, error) {
	if s.prefix == "" {
		return filepath.ToSlash(rel), nil
	}

	stripped, found := strings.CutPrefix(rel, s.prefix+string(filepath.Separator))
	if !found {
		return "", &PathError{Op: "serialize", Path: rel, Err: ErrNotBelowPrefix}
	}

	return filepath.ToSlash(stripped), nil
}

// writeParentDirs writes directory entries for all ancestors of name that
// have not been written yet, top down. It walks the ancestor chain up to
// the first known directory and replays the collected tail in reverse, so
// arbitrarily deep trees do not recurse.
func (s *serializer) writeParentDirs(name string) error {
	var missing []string

	for dir := path.Dir(name); dir != "."; dir = path.Dir(dir) {
		if _, exists := s.written[dir]; exists {
			break
		}

		missing = append(missing, dir)
	}

	for idx := len(missing) - 1; idx >= 0; idx-- {
		dir := missing[idx]
		sourcePath := filepath.Join(s.overlay.root, s.prefix, filepath.FromSlash(dir))

		info, err := os.Stat(sourcePath)
		if err != nil {
			return fmt.Errorf("stat %s: %w", sourcePath, err)
		}

		if err := s.writer.WriteDirectory(dir, info); err != nil {
			return fmt.Errorf("write entry %s: %w", dir, err)
		}

		s.written[dir] = struct{}{}
	}

	return nil
}

// ZipOptions adjusts zip serialization.
type ZipOptions struct {
	ArchiveOptions

	// Deterministic pins all entry timestamps to the zip epoch so builds
	// from different points in time produce identical bytes.
	Deterministic bool

	// Store disables compression.
	Store bool
}

// WriteZip writes the selected overlay paths as zip archive to w.
func (o *Overlay) WriteZip(w io.Writer, opts ZipOptions) error {
	var zipOpts []archive.Option

	if opts.Deterministic {
		zipOpts = append(zipOpts,
			archive.WithFixedModTime(archive.DeterministicModTime))
	}

	if opts.Store {
		zipOpts = append(zipOpts, archive.WithStoredEntries())
	}

	zipWriter := archive.NewZipWriter(w, zipOpts...)

	if err := o.WriteArchive(zipWriter, opts.ArchiveOptions); err != nil {
		return err
	}

	return zipWriter.Close()
}

// WriteZipFile writes the selected overlay paths as zip archive to the
// named file, creating missing parent directories. A partially written
// file is removed on error.
func (o *Overlay) WriteZipFile(name string, opts ZipOptions) error {
	file, err := fsutil.Create(name, fsutil.FileMode)
	if err != nil {
		return err
	}

	err = o.WriteZip(file, opts)
	if cerr := file.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		_ = fsutil.Remove(name)
		return fmt.Errorf("write %s: %w", name, err)
	}

	return nil
}

// CPIOOptions adjusts cpio serialization.
type CPIOOptions struct {
	ArchiveOptions

	// Deterministic pins all entry timestamps to the Unix epoch so builds
	// from different points in time produce identical bytes.
	Deterministic bool
}

// WriteCPIO writes the selected overlay paths as SVR4 cpio archive to w.
func (o *Overlay) WriteCPIO(w io.Writer, opts CPIOOptions) error {
	var cpioOpts []archive.Option

	if opts.Deterministic {
		cpioOpts = append(cpioOpts,
			archive.WithFixedModTime(time.Unix(0, 0).UTC()))
	}

	cpioWriter := archive.NewCPIOWriter(w, cpioOpts...)

	if err := o.WriteArchive(cpioWriter, opts.ArchiveOptions); err != nil {
		return err
	}

	return cpioWriter.Close()
}
