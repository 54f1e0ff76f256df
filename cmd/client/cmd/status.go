package cmd

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fibertrace/internal/app/client"
	"fibertrace/internal/domain/job"
	"fibertrace/internal/model"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Device status: connectivity, unsynced work, timer",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		fmt.Printf("Device:     %s\n", app.Config().DeviceID)
		fmt.Printf("Technician: %s\n", app.Actor())
		fmt.Printf("Server:     %s\n", app.Config().ServerAddress)

		if err := app.CheckConnection(); err != nil {
			fmt.Printf("Link:       %s\n", color.RedString("offline"))
		} else {
			fmt.Printf("Link:       %s\n", color.GreenString("online"))
		}

		var unsynced int
		for _, c := range model.Collections() {
			st, err := app.Sync().Status(c)
			if err != nil {
				return err
			}
			unsynced += st.Unsynced
		}
		if unsynced > 0 {
			fmt.Printf("Unsynced:   %s\n", color.YellowString("%d records", unsynced))
		} else {
			fmt.Println("Unsynced:   0")
		}

		ts, err := app.Timer().Current()
		switch {
		case errors.Is(err, client.ErrTimerNotFound):
			fmt.Println("Timer:      idle")
		case err != nil:
			return err
		default:
			elapsed, err := app.Timer().Elapsed()
			if err != nil {
				return err
			}
			state := "paused"
			if ts.IsRunning {
				state = "running"
			}
			fmt.Printf("Timer:      %s on %s (%s)\n", state, ts.JobID, job.FormatDuration(elapsed))
		}
		return nil
	},
}
