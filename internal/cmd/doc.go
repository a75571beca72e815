// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cmd implements the stagepack command line interface. It reads a
// manifest of labeled files, stages them in an overlay directory and
// serializes the result into a reproducible archive.
package cmd
