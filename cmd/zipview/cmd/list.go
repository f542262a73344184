package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/meigma/zipview"
	"github.com/meigma/zipview/filter"
)

var (
	listFilters []filter.Filter
	listLong    bool
)

var listCmd = &cobra.Command{
	Use:   "list <archive>",
	Short: "List the files of an archive",
	Long: `List the files of an archive, directories first.

Files at the root of the archive are listed before the contents of its
directories.`,
	Args: cobra.ExactArgs(1),
	RunE: list,
}

func initList() {
	listCmd.Flags().Var(filterFlag{filter.Include, &listFilters}, "include", "list only matching files"+filterUsage)
	listCmd.Flags().Var(filterFlag{filter.Exclude, &listFilters}, "exclude", "skip matching files"+filterUsage)
	listCmd.Flags().BoolVarP(&listLong, "long", "l", false, "show timestamp, size and CRC")
}

func list(cmd *cobra.Command, args []string) error {
	chain, err := filter.Compile(listFilters)
	if err != nil {
		return err
	}
	a, err := readArchive(cmd.Context(), cmd.ErrOrStderr(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !listLong {
		for _, e := range a.Entries() {
			if chain.Accept(e.Path) {
				fmt.Fprintln(out, e.Path)
			}
		}
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	for _, e := range a.Entries() {
		if !chain.Accept(e.Path) {
			continue
		}
		ts := "-"
		if t, ok := e.Time(); ok {
			ts = t.Format(zipview.TimestampLayout)
		}
		fmt.Fprintf(tw, "%s\t%s\t%08X\t %s\n", ts, zipview.FormatSize(e.Size), e.CRC32, e.Path)
	}
	return tw.Flush()
}
