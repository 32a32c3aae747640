package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/julz808/educoach-prep-portal-sub001/internal/clock"
	"github.com/julz808/educoach-prep-portal-sub001/internal/service"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect stored sessions",
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print a session's reconciled answers and, once completed, its score",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Database.Driver == "memory" {
			return fmt.Errorf("session show needs a database driver")
		}
		cat, err := loadCatalog(cfg)
		if err != nil {
			return err
		}
		repos, err := NewRepositories(cfg)
		if err != nil {
			return err
		}
		grader, err := service.NewWritingGrader(cfg)
		if err != nil {
			return err
		}

		manager := service.NewAttemptManager(
			repos.Sessions,
			service.NewQuestionProvider(repos.Questions, cat),
			service.NewWritingAssessmentService(grader, repos.Grades),
			service.NewScoringService(),
			cat,
			clock.NewReal(),
			attemptConfig(cfg),
		)
		ctx := context.Background()
		defer manager.Shutdown(ctx)

		view, err := manager.View(ctx, args[0])
		if err != nil {
			return err
		}
		printSession(view)
		return nil
	},
}

func init() {
	sessionCmd.AddCommand(sessionShowCmd)
}

func printSession(view service.SessionView) {
	fmt.Printf("Session %s (%s)\n", view.ID, view.State)
	fmt.Printf("User %s, product %s, %s / %s\n", view.UserID, view.ProductID, view.Mode, view.Section)
	if view.TimeRemainingSeconds != nil {
		fmt.Printf("Time remaining: %ds of %ds\n", *view.TimeRemainingSeconds, *view.TimeLimitSeconds)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tQUESTION\tANSWER\tFLAG\tRESULT")
	for _, q := range view.Questions {
		answer := "-"
		switch {
		case q.FreeText && q.Text != "":
			answer = fmt.Sprintf("%d chars", len(q.Text))
		case q.Selected != nil:
			answer = q.Options[*q.Selected]
		}
		flag := ""
		if q.Flagged {
			flag = "*"
		}
		result := ""
		switch {
		case q.Correct != nil && *q.Correct:
			result = "correct"
		case q.Correct != nil:
			result = "incorrect"
		case q.Grade != nil:
			result = fmt.Sprintf("%.1f/%.0f", q.Grade.EarnedPoints, q.Grade.MaxPoints)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", q.Position, q.ID, answer, flag, result)
	}
	w.Flush()

	if view.Score != nil {
		fmt.Printf("Score: %.1f / %.1f (%d%%), %d of %d answered\n",
			view.Score.EarnedPoints, view.Score.TotalMaxPoints, view.Score.Percentage,
			view.Score.AnsweredQuestions, view.Score.TotalQuestions)
	}
}
