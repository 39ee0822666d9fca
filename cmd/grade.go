package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/inspect-cli/internal/grade"
	"github.com/sells-group/inspect-cli/internal/model"
)

var gradeCmd = &cobra.Command{
	Use:   "grade <track-or-jumbo-id>",
	Short: "Resolve the quality grade of every matching row",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}

		kind, rows := env.Dataset.Search(args[0])
		if len(rows) == 0 {
			return fmt.Errorf("no records found for %s %q", kind.Label(), args[0])
		}

		spec := env.Inspector.GradeSpec()
		results := make([]model.GradeResult, len(rows))
		for i, r := range rows {
			results[i] = grade.Resolve(r, spec)
		}
		formatGrades(os.Stdout, rows, results)
		return nil
	},
}

// formatGrades writes one block per row: the resolved grade, then the
// attempt trail in strategy order.
func formatGrades(out io.Writer, rows []model.Row, results []model.GradeResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, r := range rows {
		res := results[i]
		_, _ = fmt.Fprintf(w, "%s\tgrade: %s\tsource: %s\n", r.Ref().Label(), res.Value, res.SourceStrategy)
		for _, a := range res.Attempts {
			detail := a.Value
			if a.Detail != "" {
				detail = a.Detail
			}
			_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\n", a.Strategy, a.Outcome, detail)
		}
	}
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(gradeCmd)
}
