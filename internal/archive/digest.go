// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package archive

import (
	"encoding/hex"
	"io"

	"github.com/zeebo/blake3"
)

// DigestSize is the size of a [Digest] in bytes.
const DigestSize = 32

// Digest is a BLAKE3 hash identifying an archive's content. Reproducible
// archives have stable digests, which makes them usable as cache keys.
type Digest [DigestSize]byte

// String returns the digest as lowercase hex string.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// DigestWriter hashes everything written through it on the way to the
// underlying writer, so archives can be fingerprinted while they are
// produced.
type DigestWriter struct {
	writer io.Writer
	hasher *blake3.Hasher
}

// NewDigestWriter creates a new [DigestWriter] wrapping w.
func NewDigestWriter(w io.Writer) *DigestWriter {
	return &DigestWriter{
		writer: w,
		hasher: blake3.New(),
	}
}

// Write passes p to the underlying writer and hashes the part that was
// actually written.
func (w *DigestWriter) Write(p []byte) (int, error) {
	n, err := w.writer.Write(p)
	if n > 0 {
		// Hasher.Write never fails.
		_, _ = w.hasher.Write(p[:n])
	}

	return n, err
}

// Sum returns the digest of everything written so far.
func (w *DigestWriter) Sum() Digest {
	var digest Digest

	copy(digest[:], w.hasher.Sum(nil))

	return digest
}
