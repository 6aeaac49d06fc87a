package cli

import (
	"fmt"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"warehouse-ledger/internal/app"
)

const volumeFlag = "volume"

func newItemsCommand(svc app.ApplicationService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "List and create items",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all items",
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := svc.ListItems(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-6s %-40s %10s\n", "ID", "NAME", "VOLUME")
			for _, it := range result.Items {
				fmt.Fprintf(out, "%-6d %-40s %10d\n", it.ID, it.Name, it.Volume)
			}
			return nil
		},
	}

	createFlags := map[string]cobraflags.Flag{
		nameFlag: &cobraflags.StringFlag{
			Name:     nameFlag,
			Usage:    "Item name (unique)",
			Required: true,
		},
		volumeFlag: &cobraflags.IntFlag{
			Name:  volumeFlag,
			Usage: "Volume of a single unit",
		},
	}
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an item",
		RunE: func(cmd *cobra.Command, _ []string) error {
			volume, err := createFlags[volumeFlag].GetIntE()
			if err != nil {
				return err
			}
			result, err := svc.CreateItem(cmd.Context(), app.CreateItemRequest{
				Name:   createFlags[nameFlag].GetString(),
				Volume: int64(volume),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created item %d %q (volume: %d)\n", result.Item.ID, result.Item.Name, result.Item.Volume)
			return nil
		},
	}
	cobraflags.RegisterMap(create, createFlags)

	cmd.AddCommand(list, create)
	return cmd
}
