package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/meigma/zipview"
	"github.com/meigma/zipview/config"
	"github.com/meigma/zipview/filter"
)

var (
	compareParams     string
	compareSaveParams string
	compareFields     []string
	compareFilters    []filter.Filter
	compareFormat     string
	compareDigest     bool
	compareOutput     string
)

var compareCmd = &cobra.Command{
	Use:   "compare <first> <second>",
	Short: "Compare the files of two archives",
	Long: `Compare the files of two archives by pathname.

Each line of the report starts with a five-column code:

  1  only in the first archive
  2  only in the second archive
  T  timestamps differ
  S  sizes differ
  C  CRCs differ

Pathnames that are the same in both archives are not reported.`,
	Args: cobra.ExactArgs(2),
	RunE: compare,
}

func initCompare() {
	f := compareCmd.Flags()
	f.StringVarP(&compareParams, "params", "p", "", "use saved comparison parameters")
	f.StringVar(&compareSaveParams, "save-params", "", "save the filters and fields under this name")
	f.StringSliceVar(&compareFields, "field", nil, "field to compare: timestamp, size or crc (default: all)")
	f.Var(filterFlag{filter.Include, &compareFilters}, "include", "compare only matching files"+filterUsage)
	f.Var(filterFlag{filter.Exclude, &compareFilters}, "exclude", "skip matching files"+filterUsage)
	f.StringVar(&compareFormat, "format", "", "report format: tsv or columns (default: preferences)")
	f.BoolVar(&compareDigest, "digest", false, "start the report with the digests of both archives")
	f.StringVarP(&compareOutput, "output", "o", "", "write the report to a file")
}

func compare(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	params, err := compareParamsFromFlags()
	if err != nil {
		return err
	}
	format := prefs.Comparison.ReportFormat
	if compareFormat != "" {
		if format, err = zipview.ParseReportFormat(compareFormat); err != nil {
			return err
		}
	}

	a, err := readArchive(ctx, cmd.ErrOrStderr(), args[0])
	if err != nil {
		return err
	}

	var diffs []zipview.Difference
	err = run(ctx, cmd.ErrOrStderr(), "compare", func(_ context.Context, progress zipview.ProgressFunc) error {
		var err error
		diffs, err = zipview.Compare(a, args[1], params.Filters, params.FieldSet(),
			zipview.WithLogger(logger), zipview.WithProgress(progress))
		return err
	})
	if err != nil {
		return err
	}

	if compareSaveParams != "" {
		params.Name = compareSaveParams
		prefs.SetParams(params)
		if err := config.Save(configPath, prefs); err != nil {
			return fmt.Errorf("save parameters: %w", err)
		}
		logger.Info("saved comparison parameters", "name", params.Name, "path", configPath)
	}

	return writeReport(cmd.OutOrStdout(), a.Location(), args[1], diffs, format)
}

// compareParamsFromFlags starts from the saved parameters, if any, and
// applies the filters and fields given on the command line.
func compareParamsFromFlags() (config.Params, error) {
	var params config.Params
	if compareParams != "" {
		p, ok := prefs.Params(compareParams)
		if !ok {
			return params, fmt.Errorf("no saved comparison parameters named %q", compareParams)
		}
		params = p
	}

	params.Filters = append(slices.Clone(params.Filters), compareFilters...)
	if len(compareFields) > 0 {
		params.Fields = nil
		for _, key := range compareFields {
			f, err := zipview.ParseField(key)
			if err != nil {
				return params, err
			}
			params.Fields = append(params.Fields, f)
		}
	}
	if len(params.Fields) == 0 {
		params.Fields = zipview.Fields()
	}
	return params, nil
}

func writeReport(stdout io.Writer, first, second string, diffs []zipview.Difference, format zipview.ReportFormat) (err error) {
	w := stdout
	if compareOutput != "" {
		f, ferr := os.Create(compareOutput)
		if ferr != nil {
			return ferr
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}

	if compareDigest {
		if err := zipview.WriteReportHeader(w, first, second); err != nil {
			return err
		}
	}
	return zipview.WriteReport(w, diffs, format)
}
