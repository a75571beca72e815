// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package tempdir tracks temporary directories so they can be removed in one
// sweep once the process is done with its work. Registrations are keyed by
// process ID, so state inherited by a forked child never removes directories
// the parent is still using.
package tempdir
