package job

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fibertrace/internal/app/client"
	"fibertrace/internal/domain/job"
)

// JobCmd is the parent command for installation job operations.
var JobCmd = &cobra.Command{
	Use:   "job",
	Short: "Manage installation jobs",
	Long: `Create, track and complete installation jobs. Jobs live on the
device and sync to the crew server when a link is available.`,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Job counts per lifecycle state",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		stats, err := app.Jobs().Stats()
		if err != nil {
			return err
		}

		fmt.Println("Jobs by status:")
		for _, st := range []job.Status{
			job.StatusPending, job.StatusInProgress, job.StatusOnHold, job.StatusCompleted,
		} {
			fmt.Printf("  %-12s %d\n", st, stats[st])
		}
		return nil
	},
}

func statusLabel(st job.Status) string {
	switch st {
	case job.StatusCompleted:
		return color.GreenString(string(st))
	case job.StatusInProgress:
		return color.CyanString(string(st))
	case job.StatusOnHold:
		return color.YellowString(string(st))
	default:
		return string(st)
	}
}

func init() {
	JobCmd.AddCommand(statsCmd)
}
