package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/meigma/zipview"
)

var infoCmd = &cobra.Command{
	Use:   "info <archive>",
	Short: "Show a summary of an archive",
	Args:  cobra.ExactArgs(1),
	RunE:  info,
}

func info(cmd *cobra.Command, args []string) error {
	a, err := readArchive(cmd.Context(), cmd.ErrOrStderr(), args[0])
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, p := range a.Properties() {
		fmt.Fprintf(tw, "%s:\t%s\n", p.Name, p.Value)
	}
	if !a.ModTime().IsZero() {
		fmt.Fprintf(tw, "Modified:\t%s\n", a.ModTime().Format(zipview.TimestampLayout))
	}
	return tw.Flush()
}
