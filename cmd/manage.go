package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/recruit-tracker/internal/candidate"
)

const (
	PromptEngage   = "Send engagement"
	PromptSchedule = "Auto-schedule interview"
	PromptDelete   = "Delete candidate"
	PromptAlerts   = "Show engagement alerts"
	PromptExit     = "exit"
)

var errExit = errors.New("exit requested")

var manageCmd = &cobra.Command{
	Use:   "manage",
	Short: "Walk through candidates interactively",
	Run: func(cmd *cobra.Command, _ []string) {
		s := openSession(cmd.Context())
		defer s.close()

		for {
			if err := manageOnce(s, cmd); err != nil {
				if errors.Is(err, errExit) {
					return
				}
				s.logger.Fatal("exiting", zap.Error(err))
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(manageCmd)
}

// manageOnce lets the user pick a candidate and run one action on it.
func manageOnce(s *session, cmd *cobra.Command) error {
	records := s.tracker.List()
	if len(records) == 0 {
		s.logger.Info("exiting", zap.String("reason", "no candidates"))
		return errExit
	}

	items := make([]string, 0, len(records)+2)
	for _, rec := range records {
		items = append(items, candidateLabel(rec))
	}
	items = append(items, PromptAlerts, PromptExit)

	candidatePrompt := promptui.Select{
		Label: fmt.Sprintf("Choose a candidate and press ENTER (%d alerts)", len(s.tracker.Alerts())),
		Items: items,
		Size:  10,
	}

	_, selected, err := candidatePrompt.Run()
	if err != nil {
		return err
	}

	switch selected {
	case PromptExit:
		return errExit
	case PromptAlerts:
		printAlerts(cmd.OutOrStdout(), s.tracker.Alerts())
		return nil
	}

	id, err := strconv.ParseInt(strings.Split(selected, " ")[0], 10, 64)
	if err != nil {
		return fmt.Errorf("there is no such candidate: %s", selected)
	}
	rec, ok := s.tracker.Get(id)
	if !ok {
		return fmt.Errorf("%w: %d", errNotFound, id)
	}

	actions := []string{PromptEngage}
	if isSchedulable(s, rec) {
		actions = append(actions, PromptSchedule)
	}
	actions = append(actions, PromptDelete, PromptBack)

	actionPrompt := promptui.Select{
		Label: rec.Name,
		Items: actions,
	}
	_, action, err := actionPrompt.Run()
	if err != nil {
		return err
	}

	switch action {
	case PromptEngage:
		return engage(s, id, cmd)
	case PromptSchedule:
		return schedule(s, id, cmd)
	case PromptDelete:
		return remove(s, id, cmd)
	case PromptBack:
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func candidateLabel(rec candidate.Record) string {
	return fmt.Sprintf("%d %s / %s / %s / %s risk / %d%%",
		rec.ID, rec.Name, rec.Position, rec.Status.Label(), rec.GhostingRisk, rec.EngagementScore,
	)
}
