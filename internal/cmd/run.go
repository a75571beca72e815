// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/aibor/stagepack/internal/archive"
	"github.com/aibor/stagepack/internal/fsutil"
	"github.com/aibor/stagepack/internal/overlay"
	"github.com/aibor/stagepack/internal/tempdir"
)

// IO provides input and output details for the command.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func newOverlay(flags *flags) (*overlay.Overlay, error) {
	if flags.root == "" {
		return overlay.NewTemp()
	}

	if flags.clean {
		if err := fsutil.RemoveTree(flags.root); err != nil {
			return nil, err
		}
	}

	return overlay.New(flags.root)
}

// selectedLabels translates the label flags into a fileset selection. An
// empty label name stands for the unlabeled fileset.
func selectedLabels(names []string) []overlay.Label {
	if len(names) == 0 {
		return nil
	}

	labels := make([]overlay.Label, len(names))

	for idx, name := range names {
		if name != "" {
			labels[idx] = overlay.Labeled(name)
		}
	}

	return labels
}

// excludeFunc builds the exclude predicate from the given globs. Each glob
// is matched against the source path relative to the overlay root and
// against the base name.
func excludeFunc(root string, globs []string) func(string) bool {
	if len(globs) == 0 {
		return nil
	}

	return func(sourcePath string) bool {
		rel, err := filepath.Rel(root, sourcePath)
		if err != nil {
			rel = sourcePath
		}

		for _, glob := range globs {
			if matched, _ := filepath.Match(glob, rel); matched {
				return true
			}

			if matched, _ := filepath.Match(glob, filepath.Base(rel)); matched {
				return true
			}
		}

		return false
	}
}

func writeArchive(ovl *overlay.Overlay, flags *flags, out io.Writer) error {
	opts := overlay.ArchiveOptions{
		Labels:           selectedLabels(flags.labels),
		StripPrefix:      flags.stripPrefix,
		Exclude:          excludeFunc(ovl.Root(), flags.excludes),
		PreserveSymlinks: flags.preserveSymlinks,
	}

	switch flags.format {
	case formatZip:
		return ovl.WriteZip(out, overlay.ZipOptions{
			ArchiveOptions: opts,
			Deterministic:  flags.deterministic,
			Store:          flags.noCompress,
		})
	case formatCPIO:
		return ovl.WriteCPIO(out, overlay.CPIOOptions{
			ArchiveOptions: opts,
			Deterministic:  flags.deterministic,
		})
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, flags.format)
	}
}

func run(flags *flags, cfg IO) error {
	manifest, err := ReadManifestFile(flags.manifest)
	if err != nil {
		return err
	}

	ovl, err := newOverlay(flags)
	if err != nil {
		return err
	}

	if err := manifest.Apply(ovl); err != nil {
		return fmt.Errorf("stage: %w", err)
	}

	slog.Debug("Staged overlay",
		slog.String("overlay", ovl.String()))

	out, err := fsutil.Create(flags.output, fsutil.FileMode)
	if err != nil {
		return err
	}

	digestWriter := archive.NewDigestWriter(out)

	err = writeArchive(ovl, flags, digestWriter)
	if cerr := out.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		_ = fsutil.Remove(flags.output)
		return fmt.Errorf("write %s: %w", flags.output, err)
	}

	fmt.Fprintf(cfg.Stdout, "%s  %s\n", digestWriter.Sum(), flags.output)

	return nil
}

func handleParseArgsError(err error) int {
	// ErrHelp is returned when help is requested. So exit without error
	// in this case.
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}

	// Parse errors are already printed, so just exit.
	if !errors.Is(err, &ParseArgsError{}) {
		slog.Error(err.Error())
	}

	return 1
}

// Run is the main entry point for the CLI command.
func Run(args []string, cfg IO) int {
	flags, err := parseArgs(args, cfg.Stderr)
	if err != nil {
		return handleParseArgsError(err)
	}

	setupLogging(cfg.Stderr, flags.debug)

	if flags.versionFlag {
		fmt.Fprintln(cfg.Stdout, "stagepack", version)
		return 0
	}

	defer tempdir.Teardown()

	if err := run(flags, cfg); err != nil {
		slog.Error(err.Error())
		return 1
	}

	return 0
}
