package cli

import (
	"fmt"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"warehouse-ledger/internal/app"
)

const (
	nameFlag             = "name"
	overdraftControlFlag = "overdraft-control"
)

func newWarehousesCommand(svc app.ApplicationService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "warehouses",
		Short: "List and create warehouses",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all warehouses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := svc.ListWarehouses(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-6s %-40s %s\n", "ID", "NAME", "OVERDRAFT CONTROL")
			for _, w := range result.Warehouses {
				fmt.Fprintf(out, "%-6d %-40s %t\n", w.ID, w.Name, w.OverdraftControl)
			}
			return nil
		},
	}

	createFlags := map[string]cobraflags.Flag{
		nameFlag: &cobraflags.StringFlag{
			Name:     nameFlag,
			Usage:    "Warehouse name (unique)",
			Required: true,
		},
		overdraftControlFlag: &cobraflags.BoolFlag{
			Name:  overdraftControlFlag,
			Usage: "Reject operations that would drive a balance below zero",
		},
	}
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a warehouse",
		RunE: func(cmd *cobra.Command, _ []string) error {
			control, err := createFlags[overdraftControlFlag].GetBoolE()
			if err != nil {
				return err
			}
			result, err := svc.CreateWarehouse(cmd.Context(), app.CreateWarehouseRequest{
				Name:             createFlags[nameFlag].GetString(),
				OverdraftControl: control,
			})
			if err != nil {
				return err
			}
			w := result.Warehouse
			fmt.Fprintf(cmd.OutOrStdout(), "Created warehouse %d %q (overdraft control: %t)\n", w.ID, w.Name, w.OverdraftControl)
			return nil
		},
	}
	cobraflags.RegisterMap(create, createFlags)

	cmd.AddCommand(list, create)
	return cmd
}
