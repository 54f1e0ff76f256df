package closure

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fibertrace/internal/app/client"
	"fibertrace/internal/domain/closure"
)

var (
	closureName string
	nodeID      string
	location    string
	showDeleted bool
	reason      string

	trayPosition int
	lossDB       float64
	spliceNotes  string
)

// ClosureCmd is the parent command for splice closure operations.
var ClosureCmd = &cobra.Command{
	Use:   "closure",
	Short: "Manage splice closures",
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a splice closure",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}
		if closureName == "" {
			return fmt.Errorf("--name is required")
		}

		c, err := app.Closures().Create(closure.CreateParams{
			Name:     closureName,
			NodeID:   nodeID,
			Location: location,
		})
		if err != nil {
			return fmt.Errorf("failed to create closure: %w", err)
		}

		fmt.Printf("Created closure %s (%s)\n", c.ID, c.Name)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List splice closures",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		closures, err := app.Closures().List(showDeleted)
		if err != nil {
			return fmt.Errorf("failed to list closures: %w", err)
		}
		if len(closures) == 0 {
			fmt.Println("No closures recorded")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tNODE\tLOCATION\tSPLICES\tSYNCED")
		for _, c := range closures {
			synced := color.GreenString("yes")
			if !c.Synced {
				synced = color.YellowString("pending")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
				c.ID, c.Name, c.NodeID, c.Location, len(c.Splices), synced)
		}
		w.Flush()
		return nil
	},
}

var addSpliceCmd = &cobra.Command{
	Use:   "add-splice <closure-id>",
	Short: "Record a splice in a closure",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		c, err := app.Closures().AddSplice(args[0], closure.Splice{
			TrayPosition: trayPosition,
			LossDB:       lossDB,
			Notes:        spliceNotes,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Closure %s now holds %d splices\n", c.ID, len(c.Splices))
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Splice loss statistics across closures",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		stats, err := app.Closures().Stats()
		if err != nil {
			return err
		}

		fmt.Printf("Closures:       %d\n", stats.Total)
		fmt.Printf("Splices:        %d\n", stats.SpliceCount)
		fmt.Printf("Average loss:   %.2f dB\n", stats.AverageLossDB)
		if stats.HighLossCount > 0 {
			fmt.Printf("High loss:      %s\n", color.RedString("%d closures", stats.HighLossCount))
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <closure-id>",
	Short: "Delete a closure",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		if err := app.Closures().Remove(args[0], reason); err != nil {
			return err
		}
		fmt.Printf("Closure %s deleted\n", args[0])
		return nil
	},
}

func init() {
	createCmd.Flags().StringVarP(&closureName, "name", "n", "", "closure name")
	createCmd.Flags().StringVar(&nodeID, "node", "", "node the closure sits at")
	createCmd.Flags().StringVar(&location, "location", "", "physical location")
	listCmd.Flags().BoolVar(&showDeleted, "deleted", false, "include deleted closures")
	addSpliceCmd.Flags().IntVar(&trayPosition, "tray", 0, "tray position")
	addSpliceCmd.Flags().Float64Var(&lossDB, "loss", 0, "measured loss in dB")
	addSpliceCmd.Flags().StringVar(&spliceNotes, "notes", "", "splice notes")
	deleteCmd.Flags().StringVar(&reason, "reason", "", "why the closure is removed")

	ClosureCmd.AddCommand(createCmd, listCmd, addSpliceCmd, statsCmd, deleteCmd)
}
