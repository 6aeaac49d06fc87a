package cli

import (
	"fmt"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"warehouse-ledger/internal/app"
)

const (
	warehouseFlag = "warehouse"
	itemFlag      = "item"
	deltaFlag     = "delta"
)

func newBalancesCommand(svc app.ApplicationService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Inspect and post to the balance journal",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List every balance with its derived volume",
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := svc.ListBalances(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-30s %-30s %12s %12s\n", "WAREHOUSE", "ITEM", "QUANTITY", "VOLUME")
			for _, b := range result.Balances {
				fmt.Fprintf(out, "%-30s %-30s %12d %12d\n", b.Warehouse.Name, b.Item.Name, b.Quantity, b.Volume)
			}
			return nil
		},
	}

	applyFlags := map[string]cobraflags.Flag{
		warehouseFlag: &cobraflags.IntFlag{
			Name:     warehouseFlag,
			Usage:    "Warehouse id",
			Required: true,
		},
		itemFlag: &cobraflags.IntFlag{
			Name:     itemFlag,
			Usage:    "Item id",
			Required: true,
		},
		deltaFlag: &cobraflags.IntFlag{
			Name:     deltaFlag,
			Usage:    "Signed quantity to add, e.g. 10 or -3",
			Required: true,
		},
	}
	apply := &cobra.Command{
		Use:   "apply",
		Short: "Add a signed delta to one balance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			warehouseID, err := applyFlags[warehouseFlag].GetIntE()
			if err != nil {
				return err
			}
			itemID, err := applyFlags[itemFlag].GetIntE()
			if err != nil {
				return err
			}
			delta, err := applyFlags[deltaFlag].GetIntE()
			if err != nil {
				return err
			}

			result, err := svc.ApplyBalanceOperation(cmd.Context(), app.BalanceOperationRequest{
				WarehouseID: warehouseID,
				ItemID:      itemID,
				Quantity:    int64(delta),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Warehouse %d item %d: new balance %d\n", result.WarehouseID, result.ItemID, result.Quantity)
			return nil
		},
	}
	cobraflags.RegisterMap(apply, applyFlags)

	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete balances whose quantity is zero",
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := svc.PruneZeroBalances(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d zero balance(s)\n", result.Deleted)
			return nil
		},
	}

	cmd.AddCommand(list, apply, prune)
	return cmd
}
