// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package archive writes staged file trees into archive files. All formats
// implement [Writer], keeping the serialization walk independent of the
// output format. Unix permission bits are preserved on write and restored on
// extraction. Entry timestamps can be pinned to a fixed instant so identical
// input trees produce bit-identical archives.
package archive
