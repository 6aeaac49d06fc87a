package repl

import (
	"fmt"
	"io"
	"strings"

	"warehouse-ledger/internal/app"
)

func printWarehouses(out io.Writer, result *app.WarehouseListResult) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 62))
	fmt.Fprintf(out, "  %-58s\n", "WAREHOUSES")
	fmt.Fprintln(out, strings.Repeat("=", 62))
	if len(result.Warehouses) == 0 {
		fmt.Fprintln(out, "  No warehouses found.")
		fmt.Fprintln(out, strings.Repeat("=", 62))
		return
	}
	fmt.Fprintf(out, "  %-6s %-36s %s\n", "ID", "NAME", "OVERDRAFT CONTROL")
	fmt.Fprintln(out, strings.Repeat("-", 62))
	for _, w := range result.Warehouses {
		control := "off"
		if w.OverdraftControl {
			control = "on"
		}
		fmt.Fprintf(out, "  %-6d %-36s %s\n", w.ID, w.Name, control)
	}
	fmt.Fprintln(out, strings.Repeat("=", 62))
}

func printItems(out io.Writer, result *app.ItemListResult) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 62))
	fmt.Fprintf(out, "  %-58s\n", "ITEMS")
	fmt.Fprintln(out, strings.Repeat("=", 62))
	if len(result.Items) == 0 {
		fmt.Fprintln(out, "  No items found.")
		fmt.Fprintln(out, strings.Repeat("=", 62))
		return
	}
	fmt.Fprintf(out, "  %-6s %-36s %12s\n", "ID", "NAME", "UNIT VOLUME")
	fmt.Fprintln(out, strings.Repeat("-", 62))
	for _, i := range result.Items {
		fmt.Fprintf(out, "  %-6d %-36s %12d\n", i.ID, i.Name, i.Volume)
	}
	fmt.Fprintln(out, strings.Repeat("=", 62))
}

func printBalances(out io.Writer, result *app.BalanceListResult) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 72))
	fmt.Fprintf(out, "  %-68s\n", "BALANCES")
	fmt.Fprintln(out, strings.Repeat("=", 72))
	if len(result.Balances) == 0 {
		fmt.Fprintln(out, "  No balances recorded.")
		fmt.Fprintln(out, strings.Repeat("=", 72))
		return
	}
	fmt.Fprintf(out, "  %-22s %-22s %10s %12s\n", "WAREHOUSE", "ITEM", "QUANTITY", "VOLUME")
	fmt.Fprintln(out, strings.Repeat("-", 72))
	for _, b := range result.Balances {
		fmt.Fprintf(out, "  %-22s %-22s %10d %12d\n", b.Warehouse.Name, b.Item.Name, b.Quantity, b.Volume)
	}
	fmt.Fprintln(out, strings.Repeat("=", 72))
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Lists")
	fmt.Fprintln(out, "  /warehouses, /wh                    All warehouses")
	fmt.Fprintln(out, "  /items                              All items")
	fmt.Fprintln(out, "  /balances, /bal                     All balances with derived volume")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Changes")
	fmt.Fprintln(out, "  /new-warehouse <name> [controlled]  Create a warehouse")
	fmt.Fprintln(out, "  /new-item <name> <volume>           Create an item")
	fmt.Fprintln(out, "  /post <warehouse> <item> <delta>    Add a signed delta to a balance")
	fmt.Fprintln(out, "  /post                               Guided balance operation")
	fmt.Fprintln(out, "  /prune                              Delete zero balances")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  /help, /quit")
}
