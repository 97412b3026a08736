package app

import (
	"context"
	"fmt"

	"github.com/vsinha/bomkit/pkg/infrastructure/export"
)

// ExportTable builds the table for kind: parts, inventory or orders.
func (a *App) ExportTable(ctx context.Context, kind string) (*export.Table, error) {
	var table *export.Table
	err := a.Do(ctx, func(context.Context) error {
		st := a.deps.State
		switch kind {
		case "parts":
			table = export.PartsTable(st.Parts)
		case "inventory":
			table = export.InventoryTable(st.Inventory, st)
		case "orders":
			table = export.OrdersTable(st.Orders)
		default:
			return fmt.Errorf("unknown export kind %q", kind)
		}
		return nil
	})
	return table, err
}
