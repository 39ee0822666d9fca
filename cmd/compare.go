package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/inspect-cli/internal/compare"
	"github.com/sells-group/inspect-cli/internal/model"
	"github.com/sells-group/inspect-cli/internal/report"
)

var compareCmd = &cobra.Command{
	Use:   "compare <id> <id>...",
	Short: "Compare parameters across several rolls",
	Long:  "Resolves every identifier, then evaluates each catalog parameter on every matched row and prints them side by side.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}

		rows := env.Dataset.SearchAll(args)
		if len(rows) == 0 {
			return eris.Errorf("no records found for %s", strings.Join(args, ", "))
		}

		specs := env.Inspector.Catalog().Specs()
		if params, _ := cmd.Flags().GetStringSlice("param"); len(params) > 0 {
			specs = env.Inspector.Catalog().Select(params)
			if len(specs) == 0 {
				return eris.Errorf("no ranges for parameters %s", strings.Join(params, ", "))
			}
		}

		res := env.Engine.Compare(rows, specs)
		format, _ := cmd.Flags().GetString("format")
		return writeComparison(os.Stdout, res, format)
	},
}

// writeComparison renders a comparison as a markdown table followed by the
// parameters that failed on any row, or as JSON.
func writeComparison(out io.Writer, res model.ComparisonResult, format string) error {
	switch format {
	case "", "markdown", "md":
		if _, err := fmt.Fprint(out, report.FormatComparison(res)); err != nil {
			return err
		}
		if failing := compare.Failing(res); len(failing) > 0 {
			_, err := fmt.Fprintf(out, "\nOut of range on at least one row: %s\n", strings.Join(failing, ", "))
			return err
		}
		return nil
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	default:
		return eris.Errorf("unknown format %q (want markdown or json)", format)
	}
}

func init() {
	compareCmd.Flags().StringSlice("param", nil, "parameters to compare (default: whole catalog)")
	compareCmd.Flags().String("format", "markdown", "output format (markdown, json)")
	rootCmd.AddCommand(compareCmd)
}
