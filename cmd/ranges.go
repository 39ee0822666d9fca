package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/inspect-cli/internal/evaluate"
	"github.com/sells-group/inspect-cli/internal/model"
)

var rangesCmd = &cobra.Command{
	Use:   "ranges",
	Short: "List the effective parameter ranges",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		formatRanges(os.Stdout, env.Inspector.Catalog().Specs())
		return nil
	},
}

// formatRanges writes a table of parameter ranges to out.
func formatRanges(out io.Writer, specs []model.ParameterSpec) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PARAMETER\tMIN\tMAX\tAVERAGE\tSOURCE")
	for _, s := range specs {
		avg := "-"
		if s.Average != nil {
			avg = evaluate.FormatNumber(*s.Average)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			s.Name,
			evaluate.FormatNumber(s.Min),
			evaluate.FormatNumber(s.Max),
			avg,
			s.Source,
		)
	}
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(rangesCmd)
}
