package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/vsinha/bomkit/pkg/application/dto"
	"github.com/vsinha/bomkit/pkg/application/services/bom"
	"github.com/vsinha/bomkit/pkg/application/services/parts"
	"github.com/vsinha/bomkit/pkg/application/services/quotes"
	domainservices "github.com/vsinha/bomkit/pkg/domain/services"
	"github.com/vsinha/bomkit/pkg/infrastructure/repositories/seed"
	"go.uber.org/zap"
)

// Seed writes a fixture through the services so every rule applies. Parts
// are matched by part number and BOMs by name; matches are updated, the rest
// created. Quotes are always created. The first failure stops the load.
func (a *App) Seed(ctx context.Context, fixture *seed.Fixture) (*dto.SeedResult, error) {
	result := &dto.SeedResult{}
	err := a.Do(ctx, func(ctx context.Context) error {
		st := a.deps.State
		loc := a.deps.Now().Location()

		for _, p := range fixture.Parts {
			listPrice, err := seed.Price(p.ListPrice)
			if err != nil {
				return err
			}
			purchasePrice, err := seed.Price(p.PurchasePrice)
			if err != nil {
				return err
			}
			var id string
			if existing, ok := st.PartByNumber(p.PartNumber); ok {
				id = existing.ID
			}
			if _, err := a.Parts.SavePart(ctx, id, parts.Draft{
				PartNumber:    p.PartNumber,
				Name:          p.Name,
				Category:      p.Category,
				Manufacturer:  p.Manufacturer,
				ListPrice:     listPrice,
				PurchasePrice: purchasePrice,
				Supplier:      p.Supplier,
				LeadTime:      p.LeadTime,
			}); err != nil {
				return fmt.Errorf("seed part %s: %w", p.PartNumber, err)
			}
			result.Parts++
		}

		for _, inv := range fixture.Inventory {
			part, ok := st.PartByNumber(inv.PartNumber)
			if !ok {
				return fmt.Errorf("seed inventory: unknown part %s", inv.PartNumber)
			}
			if _, err := a.Inventory.SaveRecord(ctx, part.ID, inv.CurrentStock, inv.MinStock, inv.ReorderPoint); err != nil {
				return fmt.Errorf("seed inventory %s: %w", inv.PartNumber, err)
			}
			result.Inventory++
		}

		bomIDs := make(map[string]string, len(fixture.BOMs))
		for _, b := range fixture.BOMs {
			rows := make([]domainservices.ItemRow, 0, len(b.Items))
			for _, item := range b.Items {
				part, ok := st.PartByNumber(item.PartNumber)
				if !ok {
					return fmt.Errorf("seed bom %s: unknown part %s", b.Name, item.PartNumber)
				}
				rows = append(rows, domainservices.ItemRow{
					PartID:         part.ID,
					Quantity:       strconv.Itoa(item.Quantity),
					UsageTiming:    item.UsageTiming,
					DaysAfterStart: strconv.Itoa(item.DaysAfterStart),
				})
			}
			var id string
			for _, existing := range st.BOMs {
				if existing.Name == b.Name {
					id = existing.ID
					break
				}
			}
			saved, err := a.BOMs.SaveBOM(ctx, id, bom.Draft{
				Name: b.Name, ProductName: b.ProductName, Version: b.Version, Rows: rows,
			})
			if err != nil {
				return fmt.Errorf("seed bom %s: %w", b.Name, err)
			}
			bomIDs[b.Name] = saved.ID
			result.BOMs++
		}

		for i, q := range fixture.Quotes {
			start, err := seed.Date(q.ManufacturingStartDate, loc)
			if err != nil {
				return err
			}
			delivery, err := seed.Date(q.DeliveryDate, loc)
			if err != nil {
				return err
			}
			if _, err := a.Quotes.SaveQuote(ctx, "", quotes.Draft{
				CustomerName:           q.CustomerName,
				ProductName:            q.ProductName,
				Quantity:               q.Quantity,
				ManufacturingStartDate: start,
				DeliveryDate:           delivery,
				BOMID:                  bomIDs[q.BOM],
				Notes:                  q.Notes,
			}); err != nil {
				return fmt.Errorf("seed quote %d: %w", i+1, err)
			}
			result.Quotes++
		}
		return nil
	})

	a.deps.Logger.Info("seed finished",
		zap.Int("parts", result.Parts),
		zap.Int("inventory", result.Inventory),
		zap.Int("boms", result.BOMs),
		zap.Int("quotes", result.Quotes),
		zap.Error(err))
	return result, err
}
