package job

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fibertrace/internal/app/client"
	"fibertrace/internal/domain/job"
)

var showDeleted bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installation jobs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		jobs, err := app.Jobs().List(showDeleted)
		if err != nil {
			return fmt.Errorf("failed to list jobs: %w", err)
		}
		if len(jobs) == 0 {
			fmt.Println("No jobs recorded")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTATUS\tESTIMATE\tACTUAL\tSYNCED")
		for _, j := range jobs {
			synced := color.GreenString("yes")
			if !j.Synced {
				synced = color.YellowString("pending")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				j.ID,
				j.Name,
				statusLabel(j.Status),
				job.FormatDuration(j.EstimatedDurationSeconds),
				job.FormatDuration(j.ActualDurationSeconds),
				synced,
			)
		}
		w.Flush()

		fmt.Printf("\nTotal: %d\n", len(jobs))
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&showDeleted, "deleted", false, "include deleted jobs")

	JobCmd.AddCommand(listCmd)
}
