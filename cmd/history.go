package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/inspect-cli/internal/evaluate"
	"github.com/sells-group/inspect-cli/internal/model"
	"github.com/sells-group/inspect-cli/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse saved inspections",
	Long:  "Commands for listing, viewing, and summarizing inspections saved with lookup --save.",
}

// -- history list --

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved inspections",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		track, _ := cmd.Flags().GetString("track")
		jumbo, _ := cmd.Flags().GetString("jumbo")
		overall, _ := cmd.Flags().GetString("overall")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		list, err := st.ListInspections(ctx, store.InspectionFilter{
			TrackID: track,
			JumboID: jumbo,
			Overall: model.OverallStatus(strings.ToUpper(overall)),
			Limit:   limit,
			Offset:  offset,
		})
		if err != nil {
			return eris.Wrap(err, "history list")
		}

		if len(list) == 0 {
			fmt.Fprintln(os.Stderr, "No inspections found.")
			return nil
		}

		formatHistoryList(os.Stdout, list)
		return nil
	},
}

// -- history show --

var historyShowCmd = &cobra.Command{
	Use:   "show <inspection-id>",
	Short: "Show a saved inspection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		insp, err := st.GetInspection(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "history show")
		}

		format, _ := cmd.Flags().GetString("format")
		return writeInspection(os.Stdout, *insp, format)
	},
}

// -- history stats --

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate statistics over saved inspections",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		list, err := st.ListInspections(ctx, store.InspectionFilter{Limit: 10000})
		if err != nil {
			return eris.Wrap(err, "history stats")
		}

		formatHistoryStats(os.Stdout, computeHistoryStats(list))
		return nil
	},
}

func init() {
	historyListCmd.Flags().String("track", "", "filter by Track ID")
	historyListCmd.Flags().String("jumbo", "", "filter by Jumbo ID")
	historyListCmd.Flags().String("overall", "", "filter by overall status (pass, fail)")
	historyListCmd.Flags().Int("limit", 50, "max number of inspections to display")
	historyListCmd.Flags().Int("offset", 0, "number of inspections to skip")

	historyShowCmd.Flags().String("format", "json", "output format (terminal, markdown, json)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyStatsCmd)
	rootCmd.AddCommand(historyCmd)
}

// historyStats holds aggregate statistics computed from saved inspections.
type historyStats struct {
	Total         int
	Pass          int
	Fail          int
	Passing       int
	UnknownGrade  int
	AvgCompliance float64
}

// computeHistoryStats computes aggregate statistics from a list of inspections.
func computeHistoryStats(list []model.Inspection) historyStats {
	var s historyStats
	s.Total = len(list)

	var sum float64
	for _, insp := range list {
		switch insp.Summary.Overall {
		case model.OverallPass:
			s.Pass++
		case model.OverallFail:
			s.Fail++
		}
		if insp.Passing {
			s.Passing++
		}
		if insp.Grade.Value == model.GradeUnknown {
			s.UnknownGrade++
		}
		sum += insp.Summary.ComplianceRate
	}

	if s.Total > 0 {
		s.AvgCompliance = sum / float64(s.Total)
	}
	return s
}

// formatHistoryList writes a tabular list of inspections to w.
func formatHistoryList(out io.Writer, list []model.Inspection) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tROW\tGRADE\tOVERALL\tCOMPLIANCE\tFAILURES\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t---\t-----\t-------\t----------\t--------\t-------")

	for _, insp := range list {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s%%\t%d\t%s\n",
			truncateID(insp.ID),
			insp.Row.Label(),
			insp.Grade.Value,
			insp.Summary.Overall,
			evaluate.FormatNumber(insp.Summary.ComplianceRate),
			len(insp.Failures),
			insp.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// formatHistoryStats writes aggregate stats to w.
func formatHistoryStats(out io.Writer, s historyStats) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total inspections:\t%d\n", s.Total)
	_, _ = fmt.Fprintf(w, "Overall PASS:\t%d\n", s.Pass)
	_, _ = fmt.Fprintf(w, "Overall FAIL:\t%d\n", s.Fail)
	_, _ = fmt.Fprintf(w, "Passing grade:\t%d\n", s.Passing)
	_, _ = fmt.Fprintf(w, "Unknown grade:\t%d\n", s.UnknownGrade)
	if s.Total > 0 {
		_, _ = fmt.Fprintf(w, "Avg compliance:\t%.1f%%\n", s.AvgCompliance)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
