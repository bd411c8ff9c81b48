package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/recruit-tracker/internal/ingest"
)

const stdoutPath = "-"

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every candidate to a file",
	Run: func(cmd *cobra.Command, _ []string) {
		s := openSession(cmd.Context())
		defer s.close()

		format := viper.GetString("export.format")
		exporter, err := ingest.NewExporter(format)
		if err != nil {
			s.logger.Fatal("choosing an exporter", zap.Error(err))
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = ingest.ExportFileName(time.Now(), exporter)
		}

		if out == stdoutPath {
			if err := s.tracker.Export(cmd.OutOrStdout(), exporter); err != nil {
				s.logger.Fatal("exporting candidates", zap.Error(err))
			}
			return
		}

		if err := exportToFile(out, func(w io.Writer) error { return s.tracker.Export(w, exporter) }); err != nil {
			s.logger.Fatal("exporting candidates", zap.Error(err), zap.String("file", out))
		}

		s.logger.Info("candidates exported", zap.String("file", out), zap.Int("count", len(s.tracker.List())))
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("format", "f", "", "csv, json or yaml (default from export.format)")
	exportCmd.Flags().StringP("out", "o", "", "output file, - for stdout (default recruitment_data_<date>.<ext>)")

	viper.BindPFlag("export.format", exportCmd.Flags().Lookup("format"))
}

func exportToFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return f.Close()
}
