// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package archive

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/cavaliergopher/cpio"
)

const numLinks = 2

// CPIOWriter implements [Writer] for SVR4 cpio archives, the format consumed
// by the Linux kernel for initramfs images.
type CPIOWriter struct {
	cpioWriter *cpio.Writer
	cfg        config
}

// NewCPIOWriter creates a new [CPIOWriter] writing to w.
func NewCPIOWriter(w io.Writer, opts ...Option) *CPIOWriter {
	writer := &CPIOWriter{cpioWriter: cpio.NewWriter(w)}
	for _, opt := range opts {
		opt(&writer.cfg)
	}

	return writer
}

// Close writes the trailer entry and closes the [CPIOWriter]. Flush is called
// by the underlying closer.
func (w *CPIOWriter) Close() error {
	if err := w.cpioWriter.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}

	return nil
}

// writeHeader writes the cpio header.
func (w *CPIOWriter) writeHeader(header *cpio.Header) error {
	if err := w.cpioWriter.WriteHeader(header); err != nil {
		return fmt.Errorf("write header for %s: %w", header.Name, err)
	}

	return nil
}

// WriteRegular adds a file entry with the content read from source.
func (w *CPIOWriter) WriteRegular(name string, source io.Reader, info fs.FileInfo) error {
	if !info.Mode().IsRegular() {
		return &PathError{Op: "write", Path: name, Err: ErrNotRegularFile}
	}

	header, err := cpio.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("create header: %w", err)
	}

	header.Name = name
	header.ModTime = w.cfg.modTime(info.ModTime())

	if err := w.writeHeader(header); err != nil {
		return err
	}

	if _, err := io.Copy(w.cpioWriter, source); err != nil {
		return fmt.Errorf("write body for %s: %w", name, err)
	}

	return nil
}

// WriteDirectory adds a directory entry for the given path.
func (w *CPIOWriter) WriteDirectory(name string, info fs.FileInfo) error {
	header := &cpio.Header{
		Name:    name,
		Mode:    cpio.TypeDir | cpio.FileMode(info.Mode().Perm()),
		ModTime: w.cfg.modTime(info.ModTime()),
		Links:   numLinks,
	}

	return w.writeHeader(header)
}

// WriteLink adds a symbolic link entry for the given path pointing to the
// given target.
func (w *CPIOWriter) WriteLink(name, target string, info fs.FileInfo) error {
	header := &cpio.Header{
		Name:    name,
		Mode:    cpio.TypeSymlink | cpio.ModePerm,
		ModTime: w.cfg.modTime(info.ModTime()),
		Size:    int64(len(target)),
	}

	if err := w.writeHeader(header); err != nil {
		return err
	}

	// Body of a link is the path of the target file.
	if _, err := w.cpioWriter.Write([]byte(target)); err != nil {
		return fmt.Errorf("write body for %s: %w", name, err)
	}

	return nil
}
