package cmd

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/meigma/zipview"
	"github.com/meigma/zipview/config"
	"github.com/meigma/zipview/filter"
)

var (
	extractDest       string
	extractFlatten    bool
	extractOnConflict string
	extractFilters    []filter.Filter
)

var extractCmd = &cobra.Command{
	Use:   "extract <archive> [pathname...]",
	Short: "Extract files from an archive",
	Long: `Extract files from an archive.

With no pathnames every file is extracted. Pathnames may be globs; they are
matched against the whole pathname within the archive.

Existing files are handled according to --on-conflict: "fail" stops before
anything is written, "skip" leaves them alone and "replace" overwrites them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: extract,
}

func initExtract() {
	extractCmd.Flags().StringVarP(&extractDest, "dest", "d", "", "output directory (default: preferences, then .)")
	extractCmd.Flags().BoolVarP(&extractFlatten, "flatten", "f", false, "write all files directly into the output directory")
	extractCmd.Flags().StringVar(&extractOnConflict, "on-conflict", "", "fail, skip or replace (default: preferences)")
	extractCmd.Flags().Var(filterFlag{filter.Include, &extractFilters}, "include", "extract only matching files"+filterUsage)
	extractCmd.Flags().Var(filterFlag{filter.Exclude, &extractFilters}, "exclude", "skip matching files"+filterUsage)
}

func extract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	dest := extractDest
	if dest == "" {
		dest = prefs.Extraction.Directory
	}
	if dest == "" {
		dest = "."
	}
	flatten := prefs.Extraction.Flatten
	if cmd.Flags().Changed("flatten") {
		flatten = extractFlatten
	}
	policy := prefs.Extraction.OnConflict
	if extractOnConflict != "" {
		p, err := config.ParseConflictPolicy(extractOnConflict)
		if err != nil {
			return err
		}
		policy = p
	}

	filters := slices.Clone(extractFilters)
	if len(args) > 1 {
		// Pathname arguments select; the flag filters refine the selection.
		selected := []filter.Filter{{Kind: filter.Exclude, Pattern: filter.GlobPathname, Expr: "**"}}
		for _, p := range args[1:] {
			selected = append(selected, filter.Filter{Kind: filter.Include, Pattern: filter.GlobPathname, Expr: p})
		}
		filters = append(selected, filters...)
	}
	chain, err := filter.Compile(filters)
	if err != nil {
		return err
	}

	a, err := readArchive(ctx, cmd.ErrOrStderr(), args[0])
	if err != nil {
		return err
	}

	entries := a.Entries()
	var selection []int
	for i, e := range entries {
		if chain.Accept(e.Path) {
			selection = append(selection, i)
		}
	}
	if len(selection) == 0 {
		return fmt.Errorf("no files in %s match", args[0])
	}

	selection, err = resolveConflicts(entries, selection, dest, flatten, policy)
	if err != nil {
		return err
	}

	var n int
	err = run(ctx, cmd.ErrOrStderr(), "extract", func(ctx context.Context, progress zipview.ProgressFunc) error {
		var err error
		n, err = zipview.ExtractMany(ctx, a, entries, selection, dest, flatten,
			zipview.WithLogger(logger), zipview.WithProgress(progress))
		return err
	})

	var size uint64
	for _, i := range selection[:n] {
		size += entries[i].Size
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Extracted %s of %s files (%s) to %s\n",
		humanize.Comma(int64(n)), humanize.Comma(int64(len(selection))), humanize.Bytes(size), dest)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return fmt.Errorf("extraction cancelled: %w", ctx.Err())
	}
	return nil
}

func resolveConflicts(entries []zipview.Entry, selection []int, dest string, flatten bool, policy config.ConflictPolicy) ([]int, error) {
	conflicts := zipview.Conflicts(entries, selection, dest, flatten)
	if len(conflicts) == 0 {
		return selection, nil
	}
	switch policy {
	case config.ConflictReplace:
		logger.Debug("replacing existing files", "count", len(conflicts))
		return selection, nil
	case config.ConflictSkip:
		logger.Info("skipping existing files", "count", len(conflicts))
		return slices.DeleteFunc(selection, func(i int) bool {
			_, found := slices.BinarySearch(conflicts, i)
			return found
		}), nil
	default:
		var paths []string
		for _, i := range conflicts {
			paths = append(paths, zipview.OutputPath(entries[i], dest, flatten))
		}
		return nil, fmt.Errorf("%d file(s) already exist (use --on-conflict skip or replace):\n  %s",
			len(conflicts), strings.Join(paths, "\n  "))
	}
}
