// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/klauspost/compress/flate"
)

// ZipWriter implements [Writer] for zip archives.
//
// Unix file modes are carried in the upper 16 bits of the external attributes
// of each entry, the layout Info-ZIP uses on Unix. [ExtractZip] restores them
// from there. Directory entries get the MS-DOS directory flag and are always
// stored without data. Zip64 extensions are used as needed, so archives and
// members beyond 4 GiB just work.
type ZipWriter struct {
	zipWriter *zip.Writer
	cfg       config
}

// NewZipWriter creates a new [ZipWriter] writing to w.
func NewZipWriter(w io.Writer, opts ...Option) *ZipWriter {
	zipWriter := zip.NewWriter(w)

	// Pin the deflate implementation so identical input produces identical
	// bytes independent of the toolchain version.
	zipWriter.RegisterCompressor(zip.Deflate,
		func(out io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(out, flate.DefaultCompression)
		},
	)

	writer := &ZipWriter{zipWriter: zipWriter}
	for _, opt := range opts {
		opt(&writer.cfg)
	}

	return writer
}

// Close writes the central directory. It does not close the underlying
// writer.
func (w *ZipWriter) Close() error {
	if err := w.zipWriter.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}

	return nil
}

func (w *ZipWriter) header(name string, mode fs.FileMode, modTime time.Time) *zip.FileHeader {
	header := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: w.cfg.modTime(modTime),
	}

	if w.cfg.store {
		header.Method = zip.Store
	}

	header.SetMode(mode)

	return header
}

// WriteRegular adds a file entry with the content read from source.
func (w *ZipWriter) WriteRegular(name string, source io.Reader, info fs.FileInfo) error {
	if !info.Mode().IsRegular() {
		return &PathError{Op: "write", Path: name, Err: ErrNotRegularFile}
	}

	header := w.header(name, info.Mode(), info.ModTime())

	entry, err := w.zipWriter.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("create header for %s: %w", name, err)
	}

	if _, err := io.Copy(entry, source); err != nil {
		return fmt.Errorf("write body for %s: %w", name, err)
	}

	return nil
}

// WriteDirectory adds a directory entry for the given path.
func (w *ZipWriter) WriteDirectory(name string, info fs.FileInfo) error {
	header := w.header(name+"/", info.Mode(), info.ModTime())
	// Directory entries carry no data.
	header.Method = zip.Store

	if _, err := w.zipWriter.CreateHeader(header); err != nil {
		return fmt.Errorf("create header for %s: %w", name, err)
	}

	return nil
}

// WriteLink adds a symbolic link entry for the given path pointing to the
// given target.
func (w *ZipWriter) WriteLink(name, target string, info fs.FileInfo) error {
	header := w.header(name, info.Mode(), info.ModTime())
	header.Method = zip.Store

	entry, err := w.zipWriter.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("create header for %s: %w", name, err)
	}

	// Body of a link is the path of the target file.
	if _, err := entry.Write([]byte(target)); err != nil {
		return fmt.Errorf("write body for %s: %w", name, err)
	}

	return nil
}
