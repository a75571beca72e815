// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package archive

import (
	"io"
	"io/fs"
)

// WriterCall records a single entry written to a [RecordingWriter]. The entry
// kind is carried in Mode: directories have [fs.ModeDir] set, symbolic links
// [fs.ModeSymlink], regular files neither.
type WriterCall struct {
	Name   string
	Target string
	Mode   fs.FileMode
	Body   []byte
}

// RecordingWriter implements [Writer] and records all calls in order. If Err
// is set, all methods return it without recording.
type RecordingWriter struct {
	Calls []WriterCall
	Err   error
}

func (w *RecordingWriter) WriteRegular(name string, source io.Reader, info fs.FileInfo) error {
	if w.Err != nil {
		return w.Err
	}

	body, err := io.ReadAll(source)
	if err != nil {
		return err
	}

	w.Calls = append(w.Calls, WriterCall{
		Name: name,
		Mode: info.Mode(),
		Body: body,
	})

	return nil
}

func (w *RecordingWriter) WriteDirectory(name string, info fs.FileInfo) error {
	if w.Err != nil {
		return w.Err
	}

	w.Calls = append(w.Calls, WriterCall{
		Name: name,
		Mode: info.Mode(),
	})

	return nil
}

func (w *RecordingWriter) WriteLink(name, target string, info fs.FileInfo) error {
	if w.Err != nil {
		return w.Err
	}

	w.Calls = append(w.Calls, WriterCall{
		Name:   name,
		Target: target,
		Mode:   info.Mode(),
	})

	return nil
}

// Names returns the recorded entry names in write order.
func (w *RecordingWriter) Names() []string {
	names := make([]string, len(w.Calls))
	for idx, call := range w.Calls {
		names[idx] = call.Name
	}

	return names
}
