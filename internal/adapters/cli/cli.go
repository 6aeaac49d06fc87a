// Package cli is the admin command line over the ApplicationService.
package cli

import (
	"github.com/spf13/cobra"

	"warehouse-ledger/internal/app"
)

// NewRootCommand builds the command tree. Every command writes to cmd.OutOrStdout().
func NewRootCommand(svc app.ApplicationService) *cobra.Command {
	root := &cobra.Command{
		Use:   "app",
		Short: "Administer warehouses, items and the balance journal",
		Long: `Administer warehouses, items and the balance journal from the command line.

Examples:
  app warehouses create --name Main --overdraft-control
  app items create --name Crate --volume 3
  app balances apply --warehouse 1 --item 1 --delta -5
  app balances prune`,
		SilenceUsage: true,
	}
	root.AddCommand(
		newWarehousesCommand(svc),
		newItemsCommand(svc),
		newBalancesCommand(svc),
	)
	return root
}
