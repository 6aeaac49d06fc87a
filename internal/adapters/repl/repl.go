// Package repl is an interactive shell over the ApplicationService for
// operators working directly against the ledger.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"warehouse-ledger/internal/app"
)

var errExit = errors.New("exit")

// Run reads commands from reader until /quit or end of input. Command errors
// are printed and the loop continues; only read failures are returned.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Warehouse Ledger")
	fmt.Fprintln(out, "Type /help for commands.")
	fmt.Fprintln(out, strings.Repeat("-", 70))

	sh := &shell{ctx: ctx, svc: svc, reader: reader, out: out}
	for {
		fmt.Fprint(out, "\n> ")
		input, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read input: %w", err)
		}
		eof := errors.Is(err, io.EOF)

		input = strings.TrimSpace(input)
		if input != "" {
			if dispErr := sh.dispatch(input); dispErr != nil {
				if errors.Is(dispErr, errExit) {
					fmt.Fprintln(out, "Goodbye!")
					return nil
				}
				fmt.Fprintf(out, "Error: %v\n", dispErr)
			}
		}
		if eof {
			fmt.Fprintln(out)
			return nil
		}
	}
}

type shell struct {
	ctx    context.Context
	svc    app.ApplicationService
	reader *bufio.Reader
	out    io.Writer
}

func (s *shell) dispatch(input string) error {
	if !strings.HasPrefix(input, "/") {
		return fmt.Errorf("commands start with '/' (type /help)")
	}
	tokens := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(tokens) == 0 {
		return nil
	}
	cmd := strings.ToLower(tokens[0])
	args := tokens[1:]

	switch cmd {
	case "wh", "warehouses":
		result, err := s.svc.ListWarehouses(s.ctx)
		if err != nil {
			return err
		}
		printWarehouses(s.out, result)

	case "items":
		result, err := s.svc.ListItems(s.ctx)
		if err != nil {
			return err
		}
		printItems(s.out, result)

	case "bal", "balances":
		result, err := s.svc.ListBalances(s.ctx)
		if err != nil {
			return err
		}
		printBalances(s.out, result)

	case "new-warehouse":
		// /new-warehouse <name...> [controlled]
		if len(args) == 0 {
			return fmt.Errorf("usage: /new-warehouse <name> [controlled]")
		}
		controlled := false
		if strings.EqualFold(args[len(args)-1], "controlled") {
			controlled = true
			args = args[:len(args)-1]
		}
		result, err := s.svc.CreateWarehouse(s.ctx, app.CreateWarehouseRequest{
			Name:             strings.Join(args, " "),
			OverdraftControl: controlled,
		})
		if err != nil {
			return err
		}
		w := result.Warehouse
		fmt.Fprintf(s.out, "Warehouse %d %q created (overdraft control: %t)\n", w.ID, w.Name, w.OverdraftControl)

	case "new-item":
		// /new-item <name...> <volume>
		if len(args) < 2 {
			return fmt.Errorf("usage: /new-item <name> <volume>")
		}
		volume, err := strconv.ParseInt(args[len(args)-1], 10, 64)
		if err != nil {
			return fmt.Errorf("volume %q is not an integer", args[len(args)-1])
		}
		result, err := s.svc.CreateItem(s.ctx, app.CreateItemRequest{
			Name:   strings.Join(args[:len(args)-1], " "),
			Volume: volume,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Item %d %q created (volume %d)\n", result.Item.ID, result.Item.Name, result.Item.Volume)

	case "post":
		if len(args) == 0 {
			return s.postWizard()
		}
		if len(args) != 3 {
			return fmt.Errorf("usage: /post <warehouse-id> <item-id> <delta>  (or /post alone for a guided entry)")
		}
		req, err := parseOperation(args[0], args[1], args[2])
		if err != nil {
			return err
		}
		return s.post(req)

	case "prune":
		result, err := s.svc.PruneZeroBalances(s.ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Pruned %d zero balance(s)\n", result.Deleted)

	case "help", "h":
		printHelp(s.out)

	case "quit", "exit", "q":
		return errExit

	default:
		fmt.Fprintf(s.out, "Unknown command: /%s  (type /help for all commands)\n", cmd)
	}
	return nil
}

func (s *shell) post(req app.BalanceOperationRequest) error {
	result, err := s.svc.ApplyBalanceOperation(s.ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Warehouse %d item %d: new balance %d\n", result.WarehouseID, result.ItemID, result.Quantity)
	return nil
}

func parseOperation(warehouse, item, delta string) (app.BalanceOperationRequest, error) {
	wid, err := strconv.Atoi(warehouse)
	if err != nil {
		return app.BalanceOperationRequest{}, fmt.Errorf("warehouse id %q is not an integer", warehouse)
	}
	iid, err := strconv.Atoi(item)
	if err != nil {
		return app.BalanceOperationRequest{}, fmt.Errorf("item id %q is not an integer", item)
	}
	qty, err := strconv.ParseInt(delta, 10, 64)
	if err != nil {
		return app.BalanceOperationRequest{}, fmt.Errorf("delta %q is not an integer", delta)
	}
	return app.BalanceOperationRequest{WarehouseID: wid, ItemID: iid, Quantity: qty}, nil
}
