package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/domain"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/repository"
)

type movementKey struct {
	productID uuid.UUID
	reference string
	kind      domain.MovementType
}

type StockRepository struct {
	mu        sync.Mutex
	products  *ProductRepository
	movements []*domain.StockMovement
	seen      map[movementKey]bool
}

func NewStockRepository(products *ProductRepository) *StockRepository {
	return &StockRepository{
		products: products,
		seen:     make(map[movementKey]bool),
	}
}

func (r *StockRepository) Decrement(ctx context.Context, productID uuid.UUID, qty int, reference, actor string) error {
	return r.move(productID, -qty, domain.MovementTypeSale, reference, nil, actor)
}

func (r *StockRepository) Restore(ctx context.Context, productID uuid.UUID, qty int, reference, reason, actor string) error {
	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}
	return r.move(productID, qty, domain.MovementTypeReturn, reference, reasonPtr, actor)
}

func (r *StockRepository) move(productID uuid.UUID, delta int, kind domain.MovementType, reference string, reason *string, actor string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := movementKey{productID: productID, reference: reference, kind: kind}
	if r.seen[key] {
		// Duplicate movement for the same reference is a no-op
		return nil
	}

	prev, next, err := r.products.adjustStock(productID, delta)
	if err != nil {
		return err
	}

	r.seen[key] = true
	r.movements = append(r.movements, &domain.StockMovement{
		ID:            uuid.New(),
		ProductID:     productID,
		Delta:         delta,
		PreviousStock: prev,
		NewStock:      next,
		Type:          kind,
		Reference:     reference,
		Reason:        reason,
		Actor:         actor,
		CreatedAt:     time.Now(),
	})
	return nil
}

func (r *StockRepository) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]*domain.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*domain.StockMovement, 0, len(r.movements))
	for _, m := range r.movements {
		if filter.From != nil && m.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && m.CreatedAt.After(*filter.To) {
			continue
		}
		if filter.Type != nil && m.Type != *filter.Type {
			continue
		}
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *StockRepository) GetByReference(ctx context.Context, reference string) ([]*domain.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*domain.StockMovement, 0)
	for _, m := range r.movements {
		if m.Reference == reference {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}
