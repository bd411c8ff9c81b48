package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/recruit-tracker/internal/candidate"
	"github.com/spigell/recruit-tracker/internal/store"
)

const (
	PromptYes  = "Yes"
	PromptNo   = "No"
	PromptBack = "back"
)

var engageCmd = &cobra.Command{
	Use:   "engage ID",
	Short: "Record an outreach to a candidate and print a draft note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := openSession(cmd.Context())
		defer s.close()

		if err := engage(s, s.parseID(args[0]), cmd); err != nil {
			s.logger.Fatal("sending engagement", zap.Error(err))
		}
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule ID",
	Short: "Auto-schedule an interview for a new or screening candidate",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := openSession(cmd.Context())
		defer s.close()

		if err := schedule(s, s.parseID(args[0]), cmd); err != nil {
			s.logger.Fatal("scheduling an interview", zap.Error(err))
		}
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a candidate",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := openSession(cmd.Context())
		defer s.close()

		if err := remove(s, s.parseID(args[0]), cmd); err != nil {
			s.logger.Fatal("deleting a candidate", zap.Error(err))
		}
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every candidate",
	Run: func(cmd *cobra.Command, _ []string) {
		s := openSession(cmd.Context())
		defer s.close()

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			confirm := promptui.Select{
				Label: fmt.Sprintf("Delete all %d candidates?", len(s.tracker.List())),
				Items: []string{PromptNo, PromptYes},
			}
			_, answer, err := confirm.Run()
			if err != nil {
				s.logger.Fatal("exiting", zap.Error(err))
			}
			if answer != PromptYes {
				s.logger.Info("exiting", zap.String("reason", "got no from prompt"))
				return
			}
		}

		n := s.tracker.Clear()
		s.save()

		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d candidates\n", n)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status ID STATUS",
	Short: "Move a candidate to another pipeline stage",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		s := openSession(cmd.Context())
		defer s.close()

		id := s.parseID(args[0])
		status := candidate.Status(strings.ToLower(strings.TrimSpace(args[1])))
		if !status.Known() && status != candidate.StatusHired {
			s.logger.Fatal("unknown status", zap.String("status", args[1]))
		}

		if !s.tracker.Update(id, store.Patch{Status: &status}) {
			s.logger.Fatal("candidate not found", zap.Int64("candidate_id", id))
		}
		s.save()

		fmt.Fprintf(cmd.OutOrStdout(), "Candidate %d is now %s\n", id, status.Label())
	},
}

func init() {
	rootCmd.AddCommand(engageCmd, scheduleCmd, deleteCmd, clearCmd, statusCmd)

	clearCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
}

var errNotFound = errors.New("candidate not found")

func engage(s *session, id int64, cmd *cobra.Command) error {
	res, ok := s.tracker.SendEngagement(s.ctx, id)
	if !ok {
		return fmt.Errorf("%w: %d", errNotFound, id)
	}
	s.save()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Engagement recorded for %s, score now %d%%\n\n", res.Record.Name, res.Record.EngagementScore)
	fmt.Fprintln(out, res.Note)
	return nil
}

// schedule books the interview and waits for it, unless the command is interrupted first.
func schedule(s *session, id int64, cmd *cobra.Command) error {
	found, err := s.tracker.AutoSchedule(id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %d", errNotFound, id)
	}

	done := make(chan struct{})
	go func() {
		s.tracker.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-s.ctx.Done():
		s.tracker.CancelPending()
		<-done
		return fmt.Errorf("scheduling interrupted: %w", s.ctx.Err())
	}
	s.save()

	rec, _ := s.tracker.Get(id)
	fmt.Fprintf(cmd.OutOrStdout(), "Interview scheduled for %s: %s\n", rec.Name, rec.ScheduledInterview)
	return nil
}

func remove(s *session, id int64, cmd *cobra.Command) error {
	if !s.tracker.Delete(id) {
		return fmt.Errorf("%w: %d", errNotFound, id)
	}
	s.save()

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted candidate %d\n", id)
	return nil
}

// isSchedulable mirrors the tracker's rule so the menu does not offer a doomed action.
// A candidate whose booking is already pending is not offered another one.
func isSchedulable(s *session, rec candidate.Record) bool {
	if s.tracker.Scheduling(rec.ID) {
		return false
	}
	return rec.Status == candidate.StatusNew || rec.Status == candidate.StatusScreening
}
