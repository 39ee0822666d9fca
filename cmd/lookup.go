package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/inspect-cli/internal/model"
	"github.com/sells-group/inspect-cli/internal/report"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <track-or-jumbo-id>",
	Short: "Inspect one roll by Track ID or Jumbo ID",
	Long:  "Finds the rows matching the identifier, resolves the grade of the first match, and checks every catalog parameter against its range.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}

		kind, rows := env.Dataset.Search(args[0])
		insp, err := env.Inspector.Inspect(args[0], kind, rows)
		if err != nil {
			return eris.Wrapf(err, "no records found for %s %q", kind.Label(), args[0])
		}

		if save, _ := cmd.Flags().GetBool("save"); save {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			if err := st.SaveInspection(ctx, &insp); err != nil {
				return eris.Wrap(err, "save inspection")
			}
			zap.L().Info("inspection saved", zap.String("id", insp.ID))
		}

		format, _ := cmd.Flags().GetString("format")
		return writeInspection(os.Stdout, insp, format)
	},
}

// writeInspection renders an inspection as "terminal", "markdown", or "json".
func writeInspection(out io.Writer, insp model.Inspection, format string) error {
	switch format {
	case "", "terminal":
		_, err := fmt.Fprintln(out, report.RenderTerminal(insp))
		return err
	case "markdown", "md":
		_, err := fmt.Fprint(out, report.FormatText(insp))
		return err
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(insp)
	default:
		return eris.Errorf("unknown format %q (want terminal, markdown, or json)", format)
	}
}

func init() {
	lookupCmd.Flags().String("format", "terminal", "output format (terminal, markdown, json)")
	lookupCmd.Flags().Bool("save", false, "save the inspection to the history store")
	rootCmd.AddCommand(lookupCmd)
}
