package state

import (
	"context"
	"fmt"

	"github.com/vsinha/bomkit/pkg/domain/entities"
	"github.com/vsinha/bomkit/pkg/domain/repositories"
)

// State is the in-memory snapshot of every collection. Services mutate it
// only after the store accepted the corresponding write.
type State struct {
	Parts     []*entities.Part
	BOMs      []*entities.BOM
	Inventory []*entities.InventoryRecord
	Quotes    []*entities.Quote
	Orders    []*entities.Order
}

func New() *State {
	return &State{}
}

// Load reads all five collections from the store.
func Load(ctx context.Context, store repositories.DocumentStore) (*State, error) {
	next := New()
	var err error

	if next.Parts, err = load[entities.Part](ctx, store, repositories.Parts); err != nil {
		return nil, err
	}
	if next.BOMs, err = load[entities.BOM](ctx, store, repositories.BOMs); err != nil {
		return nil, err
	}
	if next.Inventory, err = load[entities.InventoryRecord](ctx, store, repositories.Inventory); err != nil {
		return nil, err
	}
	if next.Quotes, err = load[entities.Quote](ctx, store, repositories.Quotes); err != nil {
		return nil, err
	}
	if next.Orders, err = load[entities.Order](ctx, store, repositories.Orders); err != nil {
		return nil, err
	}
	return next, nil
}

func load[T any, PT repositories.Identifiable[T]](ctx context.Context, store repositories.DocumentStore, c repositories.Collection) ([]*T, error) {
	docs, err := store.ListAll(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c, err)
	}
	items, err := repositories.DecodeAll[T, PT](docs)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c, err)
	}
	return items, nil
}

// Sync replaces the snapshot with a fresh load. On error s is left as it was.
func (s *State) Sync(ctx context.Context, store repositories.DocumentStore) error {
	next, err := Load(ctx, store)
	if err != nil {
		return err
	}
	*s = *next
	return nil
}

func (s *State) Part(id string) (*entities.Part, bool) {
	return find(s.Parts, func(p *entities.Part) bool { return p.ID == id })
}

func (s *State) PartByNumber(partNumber string) (*entities.Part, bool) {
	return find(s.Parts, func(p *entities.Part) bool { return p.PartNumber == partNumber })
}

func (s *State) BOM(id string) (*entities.BOM, bool) {
	return find(s.BOMs, func(b *entities.BOM) bool { return b.ID == id })
}

func (s *State) InventoryRecord(id string) (*entities.InventoryRecord, bool) {
	return find(s.Inventory, func(r *entities.InventoryRecord) bool { return r.ID == id })
}

// InventoryFor returns the record tracking partID.
func (s *State) InventoryFor(partID string) (*entities.InventoryRecord, bool) {
	return find(s.Inventory, func(r *entities.InventoryRecord) bool { return r.PartID == partID })
}

func (s *State) Quote(id string) (*entities.Quote, bool) {
	return find(s.Quotes, func(q *entities.Quote) bool { return q.ID == id })
}

func (s *State) Order(id string) (*entities.Order, bool) {
	return find(s.Orders, func(o *entities.Order) bool { return o.ID == id })
}

func (s *State) PutPart(p *entities.Part) {
	s.Parts = put(s.Parts, p, func(x *entities.Part) string { return x.ID })
}

func (s *State) PutBOM(b *entities.BOM) {
	s.BOMs = put(s.BOMs, b, func(x *entities.BOM) string { return x.ID })
}

func (s *State) PutInventory(r *entities.InventoryRecord) {
	s.Inventory = put(s.Inventory, r, func(x *entities.InventoryRecord) string { return x.ID })
}

func (s *State) PutQuote(q *entities.Quote) {
	s.Quotes = put(s.Quotes, q, func(x *entities.Quote) string { return x.ID })
}

func (s *State) PutOrder(o *entities.Order) {
	s.Orders = put(s.Orders, o, func(x *entities.Order) string { return x.ID })
}

func (s *State) RemovePart(id string) {
	s.Parts = remove(s.Parts, func(x *entities.Part) bool { return x.ID == id })
}

func (s *State) RemoveBOM(id string) {
	s.BOMs = remove(s.BOMs, func(x *entities.BOM) bool { return x.ID == id })
}

func (s *State) RemoveQuote(id string) {
	s.Quotes = remove(s.Quotes, func(x *entities.Quote) bool { return x.ID == id })
}

func (s *State) RemoveOrder(id string) {
	s.Orders = remove(s.Orders, func(x *entities.Order) bool { return x.ID == id })
}

func find[T any](items []*T, match func(*T) bool) (*T, bool) {
	for _, item := range items {
		if match(item) {
			return item, true
		}
	}
	return nil, false
}

func put[T any](items []*T, item *T, id func(*T) string) []*T {
	for i, existing := range items {
		if id(existing) == id(item) {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}

func remove[T any](items []*T, match func(*T) bool) []*T {
	out := make([]*T, 0, len(items))
	for _, item := range items {
		if !match(item) {
			out = append(out, item)
		}
	}
	return out
}
