// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aibor/stagepack/internal/fsutil"
)

// chmodMask covers the mode bits restored on extraction.
const chmodMask = fs.ModePerm | fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky

// ExtractZip unpacks the archive at zipPath into destDir, restoring the mode
// bits recorded in the entries. Modes are applied with an explicit chmod
// since creation modes are masked by the process umask. Entries whose path
// would escape destDir are rejected with [ErrInsecurePath].
func ExtractZip(zipPath, destDir string) error {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		if reader != nil {
			_ = reader.Close()
		}

		if errors.Is(err, zip.ErrInsecurePath) {
			return &PathError{Op: "extract", Path: zipPath, Err: ErrInsecurePath}
		}

		return fmt.Errorf("open %s: %w", zipPath, err)
	}
	defer reader.Close()

	if err := fsutil.MkdirAll(destDir); err != nil {
		return err
	}

	for _, file := range reader.File {
		if err := extractEntry(file, destDir); err != nil {
			return err
		}
	}

	return nil
}

// entryDest resolves an entry name below destDir. Entry names are trusted
// only after this check.
func entryDest(destDir, name string) (string, error) {
	dest := filepath.Join(destDir, filepath.FromSlash(name))

	prefix := filepath.Clean(destDir) + string(filepath.Separator)
	if !strings.HasPrefix(dest, prefix) {
		return "", &PathError{Op: "extract", Path: name, Err: ErrInsecurePath}
	}

	return dest, nil
}

func extractEntry(file *zip.File, destDir string) error {
	dest, err := entryDest(destDir, file.Name)
	if err != nil {
		return err
	}

	mode := file.Mode()

	switch {
	case mode.IsDir():
		return extractDir(dest, mode)
	case mode&fs.ModeSymlink != 0:
		return extractSymlink(file, dest)
	case mode.IsRegular():
		return extractRegular(file, dest, mode)
	default:
		slog.Debug("Skipping unsupported entry type",
			slog.String("name", file.Name),
			slog.Any("mode", mode))

		return nil
	}
}

func extractDir(dest string, mode fs.FileMode) error {
	if err := fsutil.MkdirAll(dest); err != nil {
		return err
	}

	if err := os.Chmod(dest, mode&chmodMask); err != nil {
		return fmt.Errorf("chmod %s: %w", dest, err)
	}

	return nil
}

func extractSymlink(file *zip.File, dest string) error {
	source, err := file.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", file.Name, err)
	}
	defer source.Close()

	target, err := io.ReadAll(source)
	if err != nil {
		return fmt.Errorf("read entry %s: %w", file.Name, err)
	}

	if err := fsutil.MkdirAll(filepath.Dir(dest)); err != nil {
		return err
	}

	// Replace any previously extracted entry.
	if err := fsutil.Remove(dest); err != nil {
		return err
	}

	if err := os.Symlink(string(target), dest); err != nil {
		return fmt.Errorf("symlink %s: %w", dest, err)
	}

	return nil
}

func extractRegular(file *zip.File, dest string, mode fs.FileMode) error {
	source, err := file.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", file.Name, err)
	}
	defer source.Close()

	out, err := fsutil.Create(dest, mode&chmodMask)
	if err != nil {
		return err
	}

	_, err = io.Copy(out, source)
	if cerr := out.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}

	return nil
}
