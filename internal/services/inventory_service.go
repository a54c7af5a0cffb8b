package services

import (
	"context"

	"medicatalog/internal/domain"
	"medicatalog/internal/repos"
)

type InventoryService struct {
	Inv *repos.InventoryRepo
}

func NewInventoryService(inv *repos.InventoryRepo) *InventoryService {
	return &InventoryService{Inv: inv}
}

// CheckAvailability reports the stock state of each id, in request order.
// Unknown ids come back OUT_OF_STOCK and not orderable.
func (s *InventoryService) CheckAvailability(ctx context.Context, ids []string) ([]domain.Availability, error) {
	st, err := s.Inv.Statuses(ctx, ids)
	if err != nil {
		return nil, domain.Transient("inventory.statuses", err)
	}
	out := make([]domain.Availability, 0, len(ids))
	for _, id := range ids {
		status, ok := st[id]
		if !ok {
			status = domain.OutOfStock
		}
		out = append(out, domain.Availability{ProductID: id, Stock: status, Orderable: status.Orderable()})
	}
	return out, nil
}

func (s *InventoryService) List(ctx context.Context) ([]repos.InventoryRow, error) {
	rows, err := s.Inv.ListAll(ctx)
	return rows, domain.Transient("inventory.list", err)
}

func (s *InventoryService) SetStatus(ctx context.Context, productID, raw string) error {
	st, err := domain.ParseStockStatus(raw)
	if err != nil {
		return err
	}
	return s.Inv.SetStatus(ctx, productID, st)
}
