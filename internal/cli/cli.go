// Package cli implements the cleanpatch command: parse a unified diff and
// apply it under a target directory with an exact, no-fuzz matcher.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/muesli/termenv"

	"github.com/asynkron/cleanpatch/internal/manifest"
	"github.com/asynkron/cleanpatch/internal/tui"
	"github.com/asynkron/cleanpatch/pkg/unidiff"
)

// Run executes cleanpatch with the provided CLI arguments.
// It returns a POSIX-style exit code: 0 on success, 1 when parsing or
// applying fails, 2 on usage errors.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	if err := godotenv.Load(); err != nil {
		// A missing .env file is fine, but other errors should be surfaced to help with debugging.
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			fmt.Fprintf(stderr, "failed to load .env: %v\n", err)
			return 1
		}
	}

	defaultDir := os.Getenv("CLEANPATCH_DIR")
	if defaultDir == "" {
		defaultDir = "."
	}

	defaultStrip := 0
	if raw := os.Getenv("CLEANPATCH_STRIP"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			fmt.Fprintf(stderr, "invalid CLEANPATCH_STRIP value %q\n", raw)
			return 2
		}
		defaultStrip = parsed
	}

	flagSet := flag.NewFlagSet("cleanpatch", flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	dir := flagSet.String("dir", defaultDir, "directory patched paths are resolved under")
	strip := flagSet.Int("strip", defaultStrip, "number of leading path segments to strip from patched paths")
	dryRun := flagSet.Bool("dry-run", false, "verify the patch applies cleanly without touching any file")
	manifestPath := flagSet.String("manifest", "", "apply every patch listed in a JSON manifest file")
	noColor := flagSet.Bool("no-color", false, "disable colored output")

	if err := flagSet.Parse(args); err != nil {
		return 2
	}
	if *strip < 0 {
		fmt.Fprintln(stderr, "-strip must be zero or positive")
		return 2
	}
	if *dryRun && *manifestPath != "" {
		fmt.Fprintln(stderr, "-dry-run and -manifest cannot be combined")
		return 2
	}

	if *manifestPath != "" {
		if flagSet.NArg() != 0 {
			fmt.Fprintln(stderr, "positional arguments cannot be combined with -manifest")
			return 2
		}
		return runManifest(ctx, *manifestPath, *dir, *noColor, stdout, stderr)
	}

	if flagSet.NArg() > 1 {
		fmt.Fprintln(stderr, "expected at most one patch file argument")
		return 2
	}

	input := stdin
	if name := flagSet.Arg(0); name != "" && name != "-" {
		file, err := os.Open(name)
		if err != nil {
			fmt.Fprintf(stderr, "failed to open patch file: %v\n", err)
			return 1
		}
		defer file.Close()
		input = file
	}
	if input == nil {
		fmt.Fprintln(stderr, "no patch input provided")
		return 2
	}

	set, err := unidiff.Parse(input)
	if err != nil {
		fmt.Fprintf(stderr, "failed to parse patch: %v\n", err)
		return 1
	}

	for _, line := range set.ExtendedInfo() {
		fmt.Fprintln(stdout, line)
	}

	if *dryRun {
		return runDryRun(ctx, set, *dir, *strip, *noColor, stdout, stderr)
	}

	if err := set.Apply(ctx, *dir, *strip); err != nil {
		printApplyError(stderr, err)
		return 1
	}
	printChanges(stdout, changesFor(set, *dir, *strip), newStyles(*noColor))
	return 0
}

func runDryRun(ctx context.Context, set *unidiff.PatchSet, dir string, strip int, noColor bool, stdout, stderr io.Writer) int {
	run := func() (tui.Summary, error) {
		fsys, err := snapshotFor(set, dir, strip)
		if err != nil {
			return tui.Summary{}, err
		}
		if err := set.ApplyTo(ctx, fsys, dir, strip, unidiff.Options{}); err != nil {
			return tui.Summary{}, err
		}
		return tui.Summary{Changes: changesFor(set, dir, strip)}, nil
	}

	// The animated progress view only makes sense on a real color terminal.
	if stdout == io.Writer(os.Stdout) && !noColor && termenv.EnvColorProfile() != termenv.Ascii {
		if _, err := tui.Run(run); err != nil {
			printApplyError(stderr, err)
			return 1
		}
		return 0
	}

	summary, err := run()
	if err != nil {
		printApplyError(stderr, err)
		return 1
	}
	fmt.Fprintln(stdout, "Dry run: all patches apply cleanly")
	printChanges(stdout, summary.Changes, newStyles(noColor))
	return 0
}

func runManifest(ctx context.Context, path, baseDir string, noColor bool, stdout, stderr io.Writer) int {
	m, err := manifest.Load(path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	st := newStyles(noColor)
	manifestDir := filepath.Dir(path)
	for _, entry := range m.Patches {
		base := baseDir
		if entry.Dir != "" {
			if filepath.IsAbs(entry.Dir) {
				base = entry.Dir
			} else {
				base = filepath.Join(baseDir, entry.Dir)
			}
		}

		patchPath := entry.File
		if !filepath.IsAbs(patchPath) {
			patchPath = filepath.Join(manifestDir, patchPath)
		}
		file, err := os.Open(patchPath)
		if err != nil {
			fmt.Fprintf(stderr, "failed to open patch file: %v\n", err)
			return 1
		}
		set, err := unidiff.Parse(file)
		file.Close()
		if err != nil {
			fmt.Fprintf(stderr, "%s: failed to parse patch: %v\n", entry.File, err)
			return 1
		}

		if err := set.Apply(ctx, base, entry.Strip); err != nil {
			fmt.Fprintf(stderr, "%s:\n", entry.File)
			printApplyError(stderr, err)
			return 1
		}
		printChanges(stdout, changesFor(set, base, entry.Strip), st)
	}
	return 0
}

// snapshotFor loads every file a patch set may touch into an in-memory
// filesystem so a dry run can exercise the full application path.
func snapshotFor(set *unidiff.PatchSet, dir string, strip int) (*unidiff.MemoryFilesystem, error) {
	files := make(map[string]string)
	for _, patch := range set.Patches() {
		for _, declared := range []string{patch.OldPath, patch.NewPath} {
			if declared == "" || declared == "/dev/null" {
				continue
			}
			path := unidiff.ResolveDestination(dir, declared, strip)
			if _, ok := files[path]; ok {
				continue
			}
			content, err := os.ReadFile(path)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				return nil, err
			}
			files[path] = string(content)
		}
	}
	return unidiff.NewMemoryFilesystem(files), nil
}

func changesFor(set *unidiff.PatchSet, dir string, strip int) []tui.Change {
	changes := make([]tui.Change, 0, len(set.Patches()))
	for _, patch := range set.Patches() {
		dest := unidiff.ResolveDestination(dir, patch.NewPath, strip)
		switch patch.Kind {
		case unidiff.FileCreated:
			changes = append(changes, tui.Change{Status: "A", Path: dest})
		case unidiff.FileDeleted:
			changes = append(changes, tui.Change{Status: "D", Path: dest})
		case unidiff.FileRenamed:
			old := unidiff.ResolveDestination(dir, patch.OldPath, strip)
			changes = append(changes, tui.Change{Status: "R", Path: old + " -> " + dest})
		default:
			changes = append(changes, tui.Change{Status: "M", Path: dest})
		}
	}
	return changes
}

type styles struct {
	add lipgloss.Style
	mod lipgloss.Style
	del lipgloss.Style
	ren lipgloss.Style
}

func newStyles(noColor bool) styles {
	if noColor || termenv.EnvColorProfile() == termenv.Ascii {
		plain := lipgloss.NewStyle()
		return styles{add: plain, mod: plain, del: plain, ren: plain}
	}
	return styles{
		add: lipgloss.NewStyle().Foreground(lipgloss.Color("70")),
		mod: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		del: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		ren: lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
	}
}

func (s styles) forStatus(status string) lipgloss.Style {
	switch status {
	case "A":
		return s.add
	case "D":
		return s.del
	case "R":
		return s.ren
	default:
		return s.mod
	}
}

func printChanges(stdout io.Writer, changes []tui.Change, st styles) {
	for _, change := range changes {
		fmt.Fprintf(stdout, "%s %s\n", st.forStatus(change.Status).Render(change.Status), change.Path)
	}
}

func printApplyError(stderr io.Writer, err error) {
	var perr *unidiff.Error
	if errors.As(err, &perr) {
		fmt.Fprintln(stderr, unidiff.FormatError(perr))
		return
	}
	fmt.Fprintln(stderr, err)
}
