// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package overlay

// Label names the origin of a file in an [Overlay].
//
// The zero value is the unlabeled case, distinct from every named label
// including the named empty string. Labels are comparable and usable as map
// keys.
type Label struct {
	name  string
	named bool
}

// Labeled returns the [Label] for the given name.
func Labeled(name string) Label {
	return Label{name: name, named: true}
}

// Name returns the label name and whether the label is named at all.
func (l Label) Name() (string, bool) {
	return l.name, l.named
}

// String returns the label name, or a fixed marker for the unlabeled case.
func (l Label) String() string {
	if !l.named {
		return "<unlabeled>"
	}

	return l.name
}
