// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"io"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		assertFlags func(t *testing.T, flags *flags)
		expectedErr error
	}{
		{
			name: "required only",
			args: []string{"--manifest", "m.yaml", "--output", "out.zip"},
			assertFlags: func(t *testing.T, flags *flags) {
				assert.Equal(t, "m.yaml", flags.manifest)
				assert.Equal(t, "out.zip", flags.output)
				assert.Equal(t, formatZip, flags.format)
				assert.False(t, flags.preserveSymlinks)
			},
		},
		{
			name: "all flags",
			args: []string{
				"--manifest", "m.yaml",
				"--output", "out.zip",
				"--root", "/tmp/overlay",
				"--clean",
				"--label", "a",
				"--label", "",
				"--strip-prefix", "prefix",
				"--exclude", "*.log",
				"--deterministic",
				"--no-compress",
				"--debug",
			},
			assertFlags: func(t *testing.T, flags *flags) {
				assert.Equal(t, "/tmp/overlay", flags.root)
				assert.True(t, flags.clean)
				assert.Equal(t, []string{"a", ""}, flags.labels)
				assert.Equal(t, "prefix", flags.stripPrefix)
				assert.Equal(t, []string{"*.log"}, flags.excludes)
				assert.True(t, flags.deterministic)
				assert.True(t, flags.noCompress)
				assert.True(t, flags.debug)
			},
		},
		{
			name: "cpio preserves symlinks",
			args: []string{
				"--manifest", "m.yaml",
				"--output", "out.cpio",
				"--format", "cpio",
			},
			assertFlags: func(t *testing.T, flags *flags) {
				assert.Equal(t, formatCPIO, flags.format)
				assert.True(t, flags.preserveSymlinks)
			},
		},
		{
			name: "cpio explicit no preserve",
			args: []string{
				"--manifest", "m.yaml",
				"--output", "out.cpio",
				"--format", "cpio",
				"--preserve-symlinks=false",
			},
			assertFlags: func(t *testing.T, flags *flags) {
				assert.False(t, flags.preserveSymlinks)
			},
		},
		{
			name:        "missing manifest",
			args:        []string{"--output", "out.zip"},
			expectedErr: &ParseArgsError{},
		},
		{
			name:        "missing output",
			args:        []string{"--manifest", "m.yaml"},
			expectedErr: &ParseArgsError{},
		},
		{
			// pflag reports Set errors with the flag name, losing the
			// wrapped sentinel.
			name: "unknown format",
			args: []string{
				"--manifest", "m.yaml",
				"--output", "out.tar",
				"--format", "tar",
			},
			expectedErr: &ParseArgsError{},
		},
		{
			name:        "unknown flag",
			args:        []string{"--nonsense"},
			expectedErr: &ParseArgsError{},
		},
		{
			name:        "help",
			args:        []string{"--help"},
			expectedErr: pflag.ErrHelp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr strings.Builder

			flags, err := parseArgs(tt.args, &stderr)

			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}

			require.NoError(t, err)
			tt.assertFlags(t, flags)
		})
	}
}

func TestFormatSet(t *testing.T) {
	var f format

	require.NoError(t, f.Set("zip"))
	assert.Equal(t, formatZip, f)

	require.NoError(t, f.Set("cpio"))
	assert.Equal(t, formatCPIO, f)

	require.ErrorIs(t, f.Set("tar"), ErrUnknownFormat)
}

func TestParseArgsVersion(t *testing.T) {
	flags, err := parseArgs([]string{"--version"}, io.Discard)
	require.NoError(t, err)
	assert.True(t, flags.versionFlag)
}
