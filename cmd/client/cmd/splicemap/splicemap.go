package splicemap

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fibertrace/internal/app/client"
	"fibertrace/internal/domain/splicemap"
)

var (
	mapName     string
	closureID   string
	cableA      string
	cableB      string
	lossDB      float64
	showDeleted bool
	reason      string
)

// SpliceMapCmd is the parent command for splice map operations.
var SpliceMapCmd = &cobra.Command{
	Use:   "splicemap",
	Short: "Manage fiber splice maps",
	Long: `A splice map documents how the fibers of two cable ends are
joined and the measured loss of each joint. Joints are classified by
loss so failing work surfaces in summaries.`,
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a splice map",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}
		if mapName == "" {
			return fmt.Errorf("--name is required")
		}

		m, err := app.SpliceMaps().Create(splicemap.CreateParams{
			Name:      mapName,
			ClosureID: closureID,
			CableA:    cableA,
			CableB:    cableB,
		})
		if err != nil {
			return fmt.Errorf("failed to create splice map: %w", err)
		}

		fmt.Printf("Created splice map %s (%s)\n", m.ID, m.Name)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List splice maps",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		maps, err := app.SpliceMaps().List(showDeleted)
		if err != nil {
			return fmt.Errorf("failed to list splice maps: %w", err)
		}
		if len(maps) == 0 {
			fmt.Println("No splice maps recorded")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCLOSURE\tCABLES\tJOINTS\tSYNCED")
		for _, m := range maps {
			synced := color.GreenString("yes")
			if !m.Synced {
				synced = color.YellowString("pending")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s/%s\t%d\t%s\n",
				m.ID, m.Name, m.ClosureID, m.CableA, m.CableB, len(m.Mappings), synced)
		}
		w.Flush()
		return nil
	},
}

var mapCmd = &cobra.Command{
	Use:   "map <map-id> <fiber-a> <fiber-b>",
	Short: "Record a fiber-to-fiber joint",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		fiberA, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid fiber number %q", args[1])
		}
		fiberB, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid fiber number %q", args[2])
		}

		m, err := app.SpliceMaps().AddMapping(args[0], fiberA, fiberB, lossDB)
		if err != nil {
			return err
		}
		fmt.Printf("Splice map %s now documents %d joints\n", m.ID, len(m.Mappings))
		return nil
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary <map-id>",
	Short: "Joint counts by loss classification",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		summary, err := app.SpliceMaps().Summary(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Summary for %s:\n", args[0])
		fmt.Printf("  %s %d\n", color.GreenString("good:     "), summary[splicemap.ClassGood])
		fmt.Printf("  %s %d\n", color.YellowString("high loss:"), summary[splicemap.ClassHighLoss])
		fmt.Printf("  %s %d\n", color.RedString("fault:    "), summary[splicemap.ClassFault])
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <map-id>",
	Short: "Delete a splice map",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		if err := app.SpliceMaps().Remove(args[0], reason); err != nil {
			return err
		}
		fmt.Printf("Splice map %s deleted\n", args[0])
		return nil
	},
}

func init() {
	createCmd.Flags().StringVarP(&mapName, "name", "n", "", "splice map name")
	createCmd.Flags().StringVar(&closureID, "closure", "", "closure the joints live in")
	createCmd.Flags().StringVar(&cableA, "cable-a", "", "first cable designation")
	createCmd.Flags().StringVar(&cableB, "cable-b", "", "second cable designation")
	listCmd.Flags().BoolVar(&showDeleted, "deleted", false, "include deleted splice maps")
	mapCmd.Flags().Float64Var(&lossDB, "loss", 0, "measured joint loss in dB")
	deleteCmd.Flags().StringVar(&reason, "reason", "", "why the splice map is removed")

	SpliceMapCmd.AddCommand(createCmd, listCmd, mapCmd, summaryCmd, deleteCmd)
}
