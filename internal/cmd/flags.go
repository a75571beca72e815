// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"
)

// Set on build.
var version = "dev"

type format string

const (
	formatZip  format = "zip"
	formatCPIO format = "cpio"
)

func (f *format) Set(value string) error {
	switch format(value) {
	case formatZip, formatCPIO:
		*f = format(value)
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, value)
	}
}

func (f *format) String() string {
	return string(*f)
}

func (f *format) Type() string {
	return "format"
}

type flags struct {
	manifest         string
	output           string
	root             string
	clean            bool
	format           format
	labels           []string
	stripPrefix      string
	excludes         []string
	deterministic    bool
	noCompress       bool
	preserveSymlinks bool
	debug            bool
	versionFlag      bool

	flagSet *pflag.FlagSet
}

func newFlagSet(flags *flags, output io.Writer) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("stagepack", pflag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.SortFlags = false

	flagSet.StringVarP(
		&flags.manifest,
		"manifest", "m",
		"",
		"manifest file describing the files to stage (required)",
	)

	flagSet.StringVarP(
		&flags.output,
		"output", "o",
		"",
		"archive file to write (required)",
	)

	flagSet.StringVar(
		&flags.root,
		"root",
		"",
		"overlay root directory, a temporary one by default",
	)

	flagSet.BoolVar(
		&flags.clean,
		"clean",
		false,
		"remove an existing overlay root before staging",
	)

	flagSet.Var(
		&flags.format,
		"format",
		"archive format: zip, cpio",
	)

	flagSet.StringArrayVarP(
		&flags.labels,
		"label", "l",
		nil,
		"serialize only the given labels, repeatable, empty name"+
			" selects unlabeled files",
	)

	flagSet.StringVar(
		&flags.stripPrefix,
		"strip-prefix",
		"",
		"remove this leading path from all entry names",
	)

	flagSet.StringArrayVar(
		&flags.excludes,
		"exclude",
		nil,
		"skip files matching the glob, repeatable, matched against"+
			" the overlay relative path and the base name",
	)

	flagSet.BoolVar(
		&flags.deterministic,
		"deterministic",
		false,
		"pin all entry timestamps for bit identical rebuilds",
	)

	flagSet.BoolVar(
		&flags.noCompress,
		"no-compress",
		false,
		"store entries without compression",
	)

	flagSet.BoolVar(
		&flags.preserveSymlinks,
		"preserve-symlinks",
		false,
		"write symbolic links as link entries instead of following"+
			" them (default for cpio)",
	)

	flagSet.BoolVar(
		&flags.debug,
		"debug",
		false,
		"enable debug output",
	)

	flagSet.BoolVar(
		&flags.versionFlag,
		"version",
		false,
		"print version and exit",
	)

	return flagSet
}

func parseArgs(args []string, output io.Writer) (*flags, error) {
	flags := &flags{format: formatZip}
	flags.flagSet = newFlagSet(flags, output)

	if err := flags.flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, err
		}

		// pflag already printed the error along with the usage.
		return nil, &ParseArgsError{msg: "parse args", err: err}
	}

	if flags.versionFlag {
		return flags, nil
	}

	// cpio consumers expect symbolic links preserved, so default it on
	// unless set explicitly.
	if flags.format == formatCPIO && !flags.flagSet.Changed("preserve-symlinks") {
		flags.preserveSymlinks = true
	}

	for _, name := range []string{"manifest", "output"} {
		if flags.flagSet.Changed(name) {
			continue
		}

		err := &ParseArgsError{msg: "flag --" + name + " is required"}
		fmt.Fprintln(output, "Error:", err)

		return nil, err
	}

	return flags, nil
}
