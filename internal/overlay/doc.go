// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package overlay assembles files from independent origins into one
// directory tree. Every file is attributed to a [Label], and a path can
// belong to only one label, so two origins claiming the same output path is
// detected instead of shipping whichever file happened to win. A selection
// of the tree can be serialized into an archive in a stable order with
// normalized metadata.
package overlay
