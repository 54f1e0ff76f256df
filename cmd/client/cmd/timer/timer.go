package timer

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fibertrace/internal/app/client"
	"fibertrace/internal/domain/job"
)

// TimerCmd is the parent command for the job timer. The timer state is
// persisted, so it keeps counting across app restarts.
var TimerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Track time spent on a job",
}

var startCmd = &cobra.Command{
	Use:   "start <job-id>",
	Short: "Start timing a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		ts, err := app.Timer().Start(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Timer running for %s\n", ts.JobID)
		return nil
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the running timer",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		ts, err := app.Timer().Pause()
		if err != nil {
			return err
		}
		fmt.Printf("Timer paused at %s\n", job.FormatDuration(ts.ElapsedSeconds))
		return nil
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume the paused timer",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		ts, err := app.Timer().Resume()
		if err != nil {
			return err
		}
		fmt.Printf("Timer running for %s\n", ts.JobID)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the timer state",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		ts, err := app.Timer().Current()
		if err != nil {
			return err
		}
		elapsed, err := app.Timer().Elapsed()
		if err != nil {
			return err
		}

		state := color.YellowString("paused")
		if ts.IsRunning {
			state = color.GreenString("running")
		}
		fmt.Printf("Job %s: %s, %s elapsed\n", ts.JobID, state, job.FormatDuration(elapsed))
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the timer and report the total",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		total, err := app.Timer().Stop()
		if err != nil {
			return err
		}
		fmt.Printf("Timer stopped, %s total\n", job.FormatDuration(total))
		return nil
	},
}

func init() {
	TimerCmd.AddCommand(startCmd, pauseCmd, resumeCmd, statusCmd, stopCmd)
}
