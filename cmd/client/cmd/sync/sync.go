package sync

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fibertrace/internal/app/client"
	"fibertrace/internal/model"
)

var collection string

// SyncCmd pushes local changes and pulls changes from other devices.
var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize with the crew server",
	Long: `Pushes unsynced local records to the server, then pulls changes
made by other devices since the last sync. Works per collection; by
default every collection is synced in order.

If the server reassigned any identifiers, references in other local
records are rewritten and go out with the next cycle.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		fmt.Println("Checking server connection...")
		if err := app.CheckConnection(); err != nil {
			return fmt.Errorf("server unreachable, changes stay local: %w", err)
		}

		start := time.Now()

		var results []client.SyncResult
		var err error
		if collection != "" {
			var r client.SyncResult
			r, err = app.Sync().SyncNow(cmd.Context(), model.Collection(collection))
			if err == nil {
				results = append(results, r)
			}
		} else {
			results, err = app.Sync().SyncAll(cmd.Context())
		}

		for _, r := range results {
			line := fmt.Sprintf("%-12s pushed %d, pulled %d", r.Collection, r.Pushed, r.Pulled)
			if r.Conflicts > 0 {
				line += fmt.Sprintf(", %s", color.YellowString("%d conflicts resolved", r.Conflicts))
			}
			if r.Rekeyed > 0 {
				line += fmt.Sprintf(", %d references rekeyed", r.Rekeyed)
			}
			for _, rej := range r.Rejected {
				line += fmt.Sprintf("\n  %s %s: %s", color.RedString("rejected"), rej.ID, rej.Reason)
			}
			fmt.Println(line)
		}
		if err != nil {
			return err
		}

		fmt.Printf("\n%s in %v\n", color.GreenString("Sync complete"),
			time.Since(start).Round(time.Millisecond))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Per-collection sync state",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "COLLECTION\tSTATE\tUNSYNCED\tLAST SYNC")
		for _, c := range model.Collections() {
			st, err := app.Sync().Status(c)
			if err != nil {
				return err
			}

			lastSync := "never"
			if !st.LastSync.IsZero() {
				lastSync = st.LastSync.Local().Format("2006-01-02 15:04:05")
			}
			state := string(st.State)
			if st.LastError != "" {
				state = color.RedString("%s (%s)", st.State, st.LastError)
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", st.Collection, state, st.Unsynced, lastSync)
		}
		w.Flush()
		return nil
	},
}

func init() {
	SyncCmd.Flags().StringVarP(&collection, "collection", "c", "", "sync a single collection")

	SyncCmd.AddCommand(statusCmd)
}
