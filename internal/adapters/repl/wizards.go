package repl

import (
	"fmt"
	"strings"
)

// postWizard prompts for one balance operation field by field.
// An empty answer or 'cancel' aborts without posting.
func (s *shell) postWizard() error {
	fmt.Fprintln(s.out, "Posting a balance operation. Leave a field blank or type 'cancel' to abort.")

	ask := func(prompt string) (string, bool) {
		fmt.Fprintf(s.out, "  %s: ", prompt)
		raw, _ := s.reader.ReadString('\n')
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.EqualFold(raw, "cancel") {
			return "", false
		}
		return raw, true
	}

	warehouse, ok := ask("Warehouse id")
	if !ok {
		fmt.Fprintln(s.out, "Cancelled.")
		return nil
	}
	item, ok := ask("Item id")
	if !ok {
		fmt.Fprintln(s.out, "Cancelled.")
		return nil
	}
	delta, ok := ask("Delta (e.g. 10 or -3)")
	if !ok {
		fmt.Fprintln(s.out, "Cancelled.")
		return nil
	}

	req, err := parseOperation(warehouse, item, delta)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "\nApply %+d to warehouse %d item %d? (y/n): ", req.Quantity, req.WarehouseID, req.ItemID)
	choice, _ := s.reader.ReadString('\n')
	choice = strings.TrimSpace(strings.ToLower(choice))
	if choice != "y" && choice != "yes" {
		fmt.Fprintln(s.out, "Operation cancelled.")
		return nil
	}
	return s.post(req)
}
