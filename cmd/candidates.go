package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/recruit-tracker/internal/filtering"
	"github.com/spigell/recruit-tracker/internal/ingest"
	"github.com/spigell/recruit-tracker/internal/tracker"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import candidates from a CSV, Excel or JSON file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := openSession(cmd.Context())
		defer s.close()

		src, err := ingest.Open(args[0])
		if err != nil {
			s.logger.Fatal("opening the upload", zap.Error(err))
		}

		imported, err := s.tracker.Import(s.ctx, src)
		if err != nil {
			var pe *ingest.ParseError
			if errors.As(err, &pe) {
				s.logger.Fatal("import failed", zap.Error(err), zap.String("file", pe.Source))
			}
			s.logger.Fatal("import failed", zap.Error(err))
		}
		s.save()

		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d candidates, %d engagement alerts\n", len(imported), len(s.tracker.Alerts()))
	},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a candidate by hand",
	Run: func(cmd *cobra.Command, _ []string) {
		s := openSession(cmd.Context())
		defer s.close()

		flags := cmd.Flags()
		in := tracker.ManualInput{}
		in.Name, _ = flags.GetString("name")
		in.Email, _ = flags.GetString("email")
		in.Phone, _ = flags.GetString("phone")
		in.Position, _ = flags.GetString("position")
		in.Location, _ = flags.GetString("location")
		in.Skills, _ = flags.GetString("skills")
		in.Experience, _ = flags.GetString("experience")

		rec, err := s.tracker.Add(in)
		if err != nil {
			s.logger.Fatal("adding a candidate", zap.Error(err))
		}
		s.save()

		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (id %d)\n", rec.Name, rec.ID)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Add a sample candidate to an empty database",
	Run: func(cmd *cobra.Command, _ []string) {
		s := openSession(cmd.Context())
		defer s.close()

		rec, added, err := s.tracker.SeedSample()
		if err != nil {
			s.logger.Fatal("adding the sample candidate", zap.Error(err))
		}
		if !added {
			fmt.Fprintf(cmd.OutOrStdout(), "Database already has %d candidates, sample skipped\n", len(s.tracker.List()))
			return
		}
		s.save()

		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (id %d)\n", rec.Name, rec.ID)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List candidates",
	Run: func(cmd *cobra.Command, _ []string) {
		s := openSession(cmd.Context())
		defer s.close()

		flags := cmd.Flags()
		cfg := &filtering.Config{}
		cfg.Statuses, _ = flags.GetStringSlice("status")
		cfg.Risks, _ = flags.GetStringSlice("risk")
		cfg.ActiveOnly, _ = flags.GetBool("active")
		cfg.Search, _ = flags.GetString("search")

		skip, _ := flags.GetStringSlice("no-filter")
		steps := listFilters(skip, s.logger)

		records, err := filtering.Run(s.ctx, cfg, filtering.Deps{Logger: s.logger}, steps, s.tracker.List())
		if err != nil {
			s.logger.Fatal("filtering failed", zap.Error(err))
		}

		printCandidates(cmd.OutOrStdout(), records)
	},
}

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show engagement alerts",
	Run: func(cmd *cobra.Command, _ []string) {
		s := openSession(cmd.Context())
		defer s.close()

		printAlerts(cmd.OutOrStdout(), s.tracker.Alerts())
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show pipeline counts",
	Run: func(cmd *cobra.Command, _ []string) {
		s := openSession(cmd.Context())
		defer s.close()

		printSummary(cmd.OutOrStdout(), s.tracker.Summary())
	},
}

var onboardingCmd = &cobra.Command{
	Use:   "onboarding",
	Short: "Show candidates in onboarding",
	Run: func(cmd *cobra.Command, _ []string) {
		s := openSession(cmd.Context())
		defer s.close()

		printOnboarding(cmd.OutOrStdout(), s.tracker.Onboarding())
	},
}

func init() {
	rootCmd.AddCommand(importCmd, addCmd, seedCmd, listCmd, alertsCmd, summaryCmd, onboardingCmd)

	addCmd.Flags().String("name", "", "candidate name")
	addCmd.Flags().String("email", "", "candidate email")
	addCmd.Flags().String("phone", "", "candidate phone")
	addCmd.Flags().String("position", "", "position applied for")
	addCmd.Flags().String("location", "", "candidate location")
	addCmd.Flags().String("skills", "", "comma separated skills")
	addCmd.Flags().String("experience", "", "experience, e.g. \"5 years\"")

	listCmd.Flags().StringSlice("status", nil, "only these statuses")
	listCmd.Flags().StringSlice("risk", nil, "only these ghosting risk levels")
	listCmd.Flags().Bool("active", false, "only candidates still in the pipeline")
	listCmd.Flags().String("search", "", "text to look for in name, position, skills or location")
	listCmd.Flags().StringSlice("no-filter", nil, "filters to switch off: active, statuses, risks or search")
}

// listFilters returns the default filter chain with the named steps switched off.
func listFilters(skip []string, logger *zap.Logger) []filtering.Filter {
	steps := filtering.Default()
	for _, name := range skip {
		filtering.DisableByName(steps, strings.TrimSpace(name), "disabled by --no-filter")
	}

	for _, st := range filtering.Describe(steps) {
		logger.Debug("filter",
			zap.String("name", st.Name),
			zap.Bool("enabled", st.Enabled),
			zap.String("reason", st.Reason),
			zap.Any("details", st.Details),
		)
	}

	return steps
}
