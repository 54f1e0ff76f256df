package job

import (
	"fmt"

	"github.com/spf13/cobra"

	"fibertrace/internal/app/client"
	"fibertrace/internal/domain/job"
)

var (
	holdReason     string
	actualMinutes  int64
	actualCost     float64
	fromTimer      bool
	deleteReason   string
	updName        string
	updDescription string
	updEstimate    int64
	updCost        float64
)

var startCmd = &cobra.Command{
	Use:   "start <job-id>",
	Short: "Start working on a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		j, err := app.Jobs().Start(args[0])
		if err != nil {
			return err
		}

		if _, err := app.Timer().Start(j.ID); err != nil {
			fmt.Printf("Job %s started, but the timer could not: %v\n", j.ID, err)
			return nil
		}
		fmt.Printf("Job %s is in progress, timer running\n", j.ID)
		return nil
	},
}

var holdCmd = &cobra.Command{
	Use:   "hold <job-id>",
	Short: "Put a job on hold",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		j, err := app.Jobs().Hold(args[0], holdReason)
		if err != nil {
			return err
		}
		fmt.Printf("Job %s is on hold\n", j.ID)
		return nil
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume <job-id>",
	Short: "Resume a held job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		j, err := app.Jobs().Resume(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Job %s is back in progress\n", j.ID)
		return nil
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete <job-id>",
	Short: "Complete a job",
	Long: `Records the actual duration and cost and marks the job completed.
With --from-timer the duration is taken from the running job timer,
which is stopped and cleared.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		var (
			j   job.Job
			err error
		)
		if fromTimer {
			j, err = app.Jobs().CompleteFromTimer(args[0], actualCost)
		} else {
			j, err = app.Jobs().Complete(args[0], actualMinutes*60, actualCost)
		}
		if err != nil {
			return err
		}

		fmt.Printf("Job %s completed in %s\n", j.ID, job.FormatDuration(j.ActualDurationSeconds))
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <job-id>",
	Short: "Update job details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		var p job.UpdateParams
		if cmd.Flags().Changed("name") {
			p.Name = &updName
		}
		if cmd.Flags().Changed("description") {
			p.Description = &updDescription
		}
		if cmd.Flags().Changed("estimate") {
			secs := updEstimate * 60
			p.EstimatedDurationSeconds = &secs
		}
		if cmd.Flags().Changed("cost") {
			p.EstimatedCost = &updCost
		}

		j, err := app.Jobs().Update(args[0], p)
		if err != nil {
			return err
		}
		fmt.Printf("Job %s updated\n", j.ID)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <job-id>",
	Short: "Delete a job",
	Long: `Marks the job deleted. The record stays as a tombstone so the
deletion propagates to other devices; its number is never reused.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		if err := app.Jobs().Remove(args[0], deleteReason); err != nil {
			return err
		}
		fmt.Printf("Job %s deleted\n", args[0])
		return nil
	},
}

func init() {
	holdCmd.Flags().StringVar(&holdReason, "reason", "", "why the job is paused")
	completeCmd.Flags().Int64Var(&actualMinutes, "duration", 0, "actual duration in minutes")
	completeCmd.Flags().Float64Var(&actualCost, "cost", 0, "actual cost")
	completeCmd.Flags().BoolVar(&fromTimer, "from-timer", false, "take the duration from the job timer")
	updateCmd.Flags().StringVar(&updName, "name", "", "new name")
	updateCmd.Flags().StringVar(&updDescription, "description", "", "new description")
	updateCmd.Flags().Int64Var(&updEstimate, "estimate", 0, "new estimate in minutes")
	updateCmd.Flags().Float64Var(&updCost, "cost", 0, "new estimated cost")
	deleteCmd.Flags().StringVar(&deleteReason, "reason", "", "why the job is removed")

	JobCmd.AddCommand(startCmd, holdCmd, resumeCmd, completeCmd, updateCmd, deleteCmd)
}
