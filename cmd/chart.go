package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/inspect-cli/internal/chart"
	"github.com/sells-group/inspect-cli/internal/model"
)

var chartCmd = &cobra.Command{
	Use:   "chart <id> <id>...",
	Short: "Chart one parameter across several rolls",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		param, _ := cmd.Flags().GetString("param")
		outPath, _ := cmd.Flags().GetString("out")
		format, _ := cmd.Flags().GetString("format")
		format = chartFormat(format, outPath)

		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}

		spec, ok := env.Inspector.Catalog().Lookup(param)
		if !ok {
			return eris.Errorf("no range for parameter %q", param)
		}
		rows := env.Dataset.SearchAll(args)
		if len(rows) == 0 {
			return eris.Errorf("no records found for %s", strings.Join(args, ", "))
		}
		res := env.Engine.Compare(rows, []model.ParameterSpec{spec})

		f, err := os.Create(outPath)
		if err != nil {
			return eris.Wrapf(err, "create %s", outPath)
		}
		if err := chart.Render(f, res, param, chart.Options{Format: format}); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return eris.Wrapf(err, "close %s", outPath)
		}

		zap.L().Info("chart written", zap.String("path", outPath), zap.Int("rows", len(rows)))
		return nil
	},
}

// chartFormat picks the explicit format, else the output file extension, else PNG.
func chartFormat(format, outPath string) string {
	if format != "" {
		return strings.ToLower(format)
	}
	if strings.EqualFold(filepath.Ext(outPath), ".svg") {
		return chart.FormatSVG
	}
	return chart.FormatPNG
}

func init() {
	chartCmd.Flags().String("param", "", "parameter to chart")
	chartCmd.Flags().String("out", "chart.png", "output file")
	chartCmd.Flags().String("format", "", "png or svg (default: from --out extension)")
	_ = chartCmd.MarkFlagRequired("param")
	rootCmd.AddCommand(chartCmd)
}
