package node

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fibertrace/internal/app/client"
	"fibertrace/internal/domain/node"
)

var (
	nodeName    string
	nodeType    string
	condition   string
	powerDBm    float64
	latitude    float64
	longitude   float64
	notes       string
	reason      string
	showDeleted bool
)

// NodeCmd is the parent command for network node operations.
var NodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Manage network nodes",
	Long: `Track OLTs, splitters, FATs, ATBs and closures in the field.
Identifiers are prefixed by type (FAT-001, OLT-002, ...).`,
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a network node",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}
		if nodeName == "" {
			return fmt.Errorf("--name is required")
		}

		n, err := app.Nodes().Create(node.CreateParams{
			Name:           nodeName,
			Type:           node.Type(nodeType),
			Condition:      node.Condition(condition),
			PowerRatingDBm: powerDBm,
			Latitude:       latitude,
			Longitude:      longitude,
			Notes:          notes,
		})
		if err != nil {
			return fmt.Errorf("failed to create node: %w", err)
		}

		fmt.Printf("Created node %s (%s)\n", n.ID, n.Name)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List network nodes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		nodes, err := app.Nodes().List(showDeleted)
		if err != nil {
			return fmt.Errorf("failed to list nodes: %w", err)
		}
		if len(nodes) == 0 {
			fmt.Println("No nodes recorded")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTYPE\tCONDITION\tPOWER dBm\tSYNCED")
		for _, n := range nodes {
			synced := color.GreenString("yes")
			if !n.Synced {
				synced = color.YellowString("pending")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f\t%s\n",
				n.ID, n.Name, n.Type, conditionLabel(n.Condition), n.PowerRatingDBm, synced)
		}
		w.Flush()
		return nil
	},
}

var conditionCmd = &cobra.Command{
	Use:   "condition <node-id> <new|good|degraded|faulty>",
	Short: "Record a node's observed condition",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		n, err := app.Nodes().SetCondition(args[0], node.Condition(args[1]), reason)
		if err != nil {
			return err
		}
		fmt.Printf("Node %s condition set to %s\n", n.ID, n.Condition)
		return nil
	},
}

var powerCmd = &cobra.Command{
	Use:   "power <node-id> <dbm>",
	Short: "Record a measured power rating",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		var dbm float64
		if _, err := fmt.Sscanf(args[1], "%f", &dbm); err != nil {
			return fmt.Errorf("invalid power value %q", args[1])
		}

		n, err := app.Nodes().SetPowerRating(args[0], dbm)
		if err != nil {
			return err
		}
		fmt.Printf("Node %s power rating set to %.1f dBm\n", n.ID, n.PowerRatingDBm)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <node-id>",
	Short: "Delete a node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		if err := app.Nodes().Remove(args[0], reason); err != nil {
			return err
		}
		fmt.Printf("Node %s deleted\n", args[0])
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Node counts by type and condition",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		stats, err := app.Nodes().Stats()
		if err != nil {
			return err
		}

		fmt.Printf("Nodes: %d (%d unsynced)\n\n", stats.Total, stats.Unsynced)
		fmt.Println("By type:")
		for _, t := range []node.Type{
			node.TypeOLT, node.TypeSplitter, node.TypeFAT, node.TypeATB, node.TypeClosure,
		} {
			if c := stats.ByType[t]; c > 0 {
				fmt.Printf("  %-10s %d\n", t, c)
			}
		}
		fmt.Println("By condition:")
		for _, c := range []node.Condition{
			node.ConditionNew, node.ConditionGood, node.ConditionDegraded, node.ConditionFaulty,
		} {
			if n := stats.ByCondition[c]; n > 0 {
				fmt.Printf("  %-10s %d\n", c, n)
			}
		}
		return nil
	},
}

func conditionLabel(c node.Condition) string {
	switch c {
	case node.ConditionFaulty:
		return color.RedString(string(c))
	case node.ConditionDegraded:
		return color.YellowString(string(c))
	case node.ConditionGood:
		return color.GreenString(string(c))
	default:
		return string(c)
	}
}

func init() {
	createCmd.Flags().StringVarP(&nodeName, "name", "n", "", "node name")
	createCmd.Flags().StringVarP(&nodeType, "type", "t", "", "node type (olt, splitter, fat, atb, closure)")
	createCmd.Flags().StringVar(&condition, "condition", "", "initial condition (defaults to new)")
	createCmd.Flags().Float64Var(&powerDBm, "power", 0, "power rating in dBm")
	createCmd.Flags().Float64Var(&latitude, "lat", 0, "latitude")
	createCmd.Flags().Float64Var(&longitude, "lon", 0, "longitude")
	createCmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	conditionCmd.Flags().StringVar(&reason, "reason", "", "why the condition changed")
	deleteCmd.Flags().StringVar(&reason, "reason", "", "why the node is removed")
	listCmd.Flags().BoolVar(&showDeleted, "deleted", false, "include deleted nodes")

	NodeCmd.AddCommand(createCmd, listCmd, conditionCmd, powerCmd, deleteCmd, statsCmd)
}
