package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/domain"
	"github.com/Juste-Gnimavo/cechemoi-sub006/pkg/errors"
)

type ProductRepository struct {
	mu       sync.RWMutex
	products map[uuid.UUID]*domain.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	copied := *product
	return &copied, nil
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	copied := *product
	r.products[product.ID] = &copied
	return nil
}

// adjustStock applies a delta under the repository lock and reports the
// previous and new stock. Used by the memory stock repository so the
// check-and-update is atomic, matching the postgres FOR UPDATE path.
func (r *ProductRepository) adjustStock(id uuid.UUID, delta int) (prev, next int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return 0, 0, &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	prev = product.Stock
	next = prev + delta
	if next < 0 {
		return prev, prev, &errors.ErrInsufficientStock{
			ProductID: id,
			Requested: -delta,
			Available: prev,
		}
	}
	product.Stock = next
	product.UpdatedAt = time.Now()
	return prev, next, nil
}
