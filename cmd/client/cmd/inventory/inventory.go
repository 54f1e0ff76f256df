package inventory

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fibertrace/internal/app/client"
	"fibertrace/internal/domain/inventory"
)

var (
	itemName    string
	unit        string
	current     float64
	minimum     float64
	maximum     float64
	supplier    string
	location    string
	showDeleted bool
	reason      string
)

// InventoryCmd is the parent command for material stock operations.
var InventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Manage material stock",
	Long: `Track consumables on the truck: cable drums, closures,
connectors. Stock adjustments are recorded with a reason so usage
can be reconciled later.`,
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a stock item",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}
		if itemName == "" {
			return fmt.Errorf("--name is required")
		}

		item, err := app.Inventory().Create(inventory.CreateParams{
			Name:         itemName,
			Unit:         unit,
			CurrentStock: current,
			MinimumStock: minimum,
			MaximumStock: maximum,
			Supplier:     supplier,
			Location:     location,
		})
		if err != nil {
			return fmt.Errorf("failed to create item: %w", err)
		}

		fmt.Printf("Created item %s (%s)\n", item.ID, item.Name)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stock items",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		items, err := app.Inventory().List(showDeleted)
		if err != nil {
			return fmt.Errorf("failed to list items: %w", err)
		}
		if len(items) == 0 {
			fmt.Println("No stock recorded")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTOCK\tMIN\tUNIT\tSYNCED")
		for _, item := range items {
			stock := fmt.Sprintf("%.1f", item.CurrentStock)
			if item.CurrentStock <= item.MinimumStock {
				stock = color.RedString(stock)
			}
			synced := color.GreenString("yes")
			if !item.Synced {
				synced = color.YellowString("pending")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%s\t%s\n",
				item.ID, item.Name, stock, item.MinimumStock, item.Unit, synced)
		}
		w.Flush()
		return nil
	},
}

var adjustCmd = &cobra.Command{
	Use:   "adjust <item-id> <delta>",
	Short: "Adjust stock by a signed amount",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		delta, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q", args[1])
		}

		item, err := app.Inventory().AdjustStock(args[0], delta, reason)
		if err != nil {
			return err
		}
		fmt.Printf("Item %s stock is now %.1f %s\n", item.ID, item.CurrentStock, item.Unit)
		return nil
	},
}

var lowCmd = &cobra.Command{
	Use:   "low",
	Short: "Items at or below minimum stock",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		items, err := app.Inventory().LowStock()
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("All items above minimum stock")
			return nil
		}

		for _, item := range items {
			fmt.Printf("%s %s: %.1f %s (min %.1f)\n",
				color.RedString(item.ID), item.Name, item.CurrentStock, item.Unit, item.MinimumStock)
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <item-id>",
	Short: "Delete a stock item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		if err := app.Inventory().Remove(args[0], reason); err != nil {
			return err
		}
		fmt.Printf("Item %s deleted\n", args[0])
		return nil
	},
}

func init() {
	createCmd.Flags().StringVarP(&itemName, "name", "n", "", "item name")
	createCmd.Flags().StringVarP(&unit, "unit", "u", "pcs", "unit of measure")
	createCmd.Flags().Float64Var(&current, "stock", 0, "current stock level")
	createCmd.Flags().Float64Var(&minimum, "min", 0, "minimum stock level")
	createCmd.Flags().Float64Var(&maximum, "max", 0, "maximum stock level")
	createCmd.Flags().StringVar(&supplier, "supplier", "", "supplier")
	createCmd.Flags().StringVar(&location, "location", "", "storage location")
	listCmd.Flags().BoolVar(&showDeleted, "deleted", false, "include deleted items")
	adjustCmd.Flags().StringVar(&reason, "reason", "", "why the stock changed")
	deleteCmd.Flags().StringVar(&reason, "reason", "", "why the item is removed")

	InventoryCmd.AddCommand(createCmd, listCmd, adjustCmd, lowCmd, deleteCmd)
}
