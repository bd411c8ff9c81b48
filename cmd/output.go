package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spigell/recruit-tracker/internal/candidate"
	"github.com/spigell/recruit-tracker/internal/tracker"
)

func printCandidates(w io.Writer, records []candidate.Record) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPOSITION\tSTATUS\tAPPLIED\tRISK\tENGAGEMENT\tRESPONSE\tLAST CONTACT")
	for _, rec := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%d%%\t%d%%\t%s\n",
			rec.ID, rec.Name, rec.Position, rec.Status.Label(), rec.AppliedDate,
			rec.GhostingRisk, rec.EngagementScore, rec.ResponseRate, rec.LastContact,
		)
	}
	_ = tw.Flush()
}

func printAlerts(w io.Writer, alerts []candidate.Alert) {
	if len(alerts) == 0 {
		fmt.Fprintln(w, "No engagement alerts")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CANDIDATE\tSEVERITY\tMESSAGE")
	for _, a := range alerts {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", a.CandidateID, a.Severity, a.Message)
	}
	_ = tw.Flush()
}

func printSummary(w io.Writer, s tracker.Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total candidates\t%d\n", s.Total)
	fmt.Fprintf(tw, "Active pipeline\t%d\n", s.Active)
	fmt.Fprintf(tw, "Engagement alerts\t%d\n", s.Alerts)
	for _, stage := range candidate.PipelineStages {
		fmt.Fprintf(tw, "%s\t%d\n", stage.Label(), s.ByStatus[stage])
	}
	_ = tw.Flush()
}

func printOnboarding(w io.Writer, records []candidate.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No candidates in onboarding")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPOSITION\tHIRED\tRETENTION RISK\tPROGRESS")
	for _, rec := range records {
		progress := "-"
		if rec.OnboardingProgress != nil {
			progress = fmt.Sprintf("%d%%", *rec.OnboardingProgress)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			rec.ID, rec.Name, rec.Position, orDash(rec.HireDate), orDash(rec.RetentionRisk), progress,
		)
	}
	_ = tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
