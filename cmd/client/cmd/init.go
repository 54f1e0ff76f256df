package cmd

import (
	"fibertrace/cmd/client/cmd/closure"
	"fibertrace/cmd/client/cmd/inventory"
	"fibertrace/cmd/client/cmd/job"
	"fibertrace/cmd/client/cmd/node"
	"fibertrace/cmd/client/cmd/route"
	"fibertrace/cmd/client/cmd/splicemap"
	"fibertrace/cmd/client/cmd/sync"
	"fibertrace/cmd/client/cmd/timer"
)

func init() {
	rootCmd.AddCommand(job.JobCmd)
	rootCmd.AddCommand(node.NodeCmd)
	rootCmd.AddCommand(route.RouteCmd)
	rootCmd.AddCommand(closure.ClosureCmd)
	rootCmd.AddCommand(splicemap.SpliceMapCmd)
	rootCmd.AddCommand(inventory.InventoryCmd)
	rootCmd.AddCommand(sync.SyncCmd)
	rootCmd.AddCommand(timer.TimerCmd)
	rootCmd.AddCommand(statusCmd)
}
