package route

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fibertrace/internal/app/client"
	"fibertrace/internal/domain/route"
)

var (
	routeName   string
	routeType   string
	startNodeID string
	endNodeID   string
	showDeleted bool
	reason      string

	segmentMeters float64
	segmentDesc   string

	cableType    string
	cableSize    string
	totalMeters  float64
	reserveCount float64
	spliceCount  int
)

// RouteCmd is the parent command for cable route operations.
var RouteCmd = &cobra.Command{
	Use:   "route",
	Short: "Manage cable routes",
	Long: `A route is a cable run between two nodes, built from ordered
segments, with its own cable inventory for material projections.`,
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a cable route",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}
		if routeName == "" {
			return fmt.Errorf("--name is required")
		}

		r, err := app.Routes().Create(route.CreateParams{
			Name:        routeName,
			Type:        route.Type(routeType),
			StartNodeID: startNodeID,
			EndNodeID:   endNodeID,
		})
		if err != nil {
			return fmt.Errorf("failed to create route: %w", err)
		}

		fmt.Printf("Created route %s (%s)\n", r.ID, r.Name)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cable routes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		routes, err := app.Routes().List(showDeleted)
		if err != nil {
			return fmt.Errorf("failed to list routes: %w", err)
		}
		if len(routes) == 0 {
			fmt.Println("No routes recorded")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTYPE\tFROM\tTO\tSEGMENTS\tSYNCED")
		for _, r := range routes {
			synced := color.GreenString("yes")
			if !r.Synced {
				synced = color.YellowString("pending")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
				r.ID, r.Name, r.Type, r.StartNodeID, r.EndNodeID, len(r.Segments), synced)
		}
		w.Flush()
		return nil
	},
}

var addSegmentCmd = &cobra.Command{
	Use:   "add-segment <route-id>",
	Short: "Append a segment to a route",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		r, err := app.Routes().AddSegment(args[0], segmentMeters, segmentDesc)
		if err != nil {
			return err
		}
		fmt.Printf("Route %s now has %d segments\n", r.ID, len(r.Segments))
		return nil
	},
}

var setInventoryCmd = &cobra.Command{
	Use:   "set-inventory <route-id>",
	Short: "Record the cable inventory of a route",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		r, err := app.Routes().SetInventory(args[0], route.Inventory{
			CableType:         cableType,
			CableSize:         cableSize,
			TotalLengthMeters: totalMeters,
			ReserveMeters:     reserveCount,
			SpliceCount:       spliceCount,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Route %s inventory updated\n", r.ID)
		return nil
	},
}

var materialsCmd = &cobra.Command{
	Use:   "materials <route-id>",
	Short: "Material projection for a route",
	Long: `Derives splice and closure counts and remaining cable reserve
from the route's segments and inventory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		m, err := app.Routes().Materials(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Materials for %s:\n", args[0])
		fmt.Printf("  Distance:  %.0f m\n", m.TotalDistanceMeters)
		fmt.Printf("  Splices:   %d\n", m.SpliceCount)
		fmt.Printf("  Closures:  %d\n", m.ClosureCount)
		fmt.Printf("  Reserve:   %.0f m\n", m.ReserveMeters)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <route-id>",
	Short: "Delete a route",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		if err := app.Routes().Remove(args[0], reason); err != nil {
			return err
		}
		fmt.Printf("Route %s deleted\n", args[0])
		return nil
	},
}

func init() {
	createCmd.Flags().StringVarP(&routeName, "name", "n", "", "route name")
	createCmd.Flags().StringVarP(&routeType, "type", "t", string(route.TypeDistribution), "route type (backbone, distribution, access, drop)")
	createCmd.Flags().StringVar(&startNodeID, "from", "", "start node id")
	createCmd.Flags().StringVar(&endNodeID, "to", "", "end node id")
	listCmd.Flags().BoolVar(&showDeleted, "deleted", false, "include deleted routes")
	addSegmentCmd.Flags().Float64Var(&segmentMeters, "distance", 0, "segment length in meters")
	addSegmentCmd.Flags().StringVar(&segmentDesc, "description", "", "segment description")
	setInventoryCmd.Flags().StringVar(&cableType, "cable-type", "", "cable type")
	setInventoryCmd.Flags().StringVar(&cableSize, "cable-size", "", "cable size (core count)")
	setInventoryCmd.Flags().Float64Var(&totalMeters, "length", 0, "total cable length in meters")
	setInventoryCmd.Flags().Float64Var(&reserveCount, "reserve", 0, "reserve length in meters")
	setInventoryCmd.Flags().IntVar(&spliceCount, "splices", 0, "planned splice count")
	deleteCmd.Flags().StringVar(&reason, "reason", "", "why the route is removed")

	RouteCmd.AddCommand(createCmd, listCmd, addSegmentCmd, setInventoryCmd, materialsCmd, deleteCmd)
}
