// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package fsutil provides idempotent filesystem helpers and the atomic file
// installer used for staging overlay trees. All directories are created with
// a fixed mode so staged trees do not depend on the process umask.
package fsutil
