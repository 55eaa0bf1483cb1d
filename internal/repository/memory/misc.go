package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/domain"
	"github.com/Juste-Gnimavo/cechemoi-sub006/pkg/errors"
)

type sequenceKey struct {
	namespace string
	date      string
}

type SequenceRepository struct {
	mu     sync.Mutex
	values map[sequenceKey]int
}

func NewSequenceRepository() *SequenceRepository {
	return &SequenceRepository{values: make(map[sequenceKey]int)}
}

func (r *SequenceRepository) Next(ctx context.Context, namespace string, date time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := sequenceKey{namespace: namespace, date: date.Format("2006-01-02")}
	r.values[key]++
	return r.values[key], nil
}

type OutboxRepository struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*domain.OutboxEntry
}

func NewOutboxRepository() *OutboxRepository {
	return &OutboxRepository{entries: make(map[uuid.UUID]*domain.OutboxEntry)}
}

func (r *OutboxRepository) Enqueue(ctx context.Context, entry *domain.OutboxEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	now := time.Now()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	if entry.Status == "" {
		entry.Status = domain.OutboxStatusPending
	}
	copied := *entry
	r.entries[entry.ID] = &copied
	return nil
}

func (r *OutboxRepository) ListPending(ctx context.Context, limit int) ([]*domain.OutboxEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*domain.OutboxEntry, 0)
	for _, entry := range r.entries {
		if entry.Status == domain.OutboxStatusPending {
			copied := *entry
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *OutboxRepository) MarkDispatched(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "outbox entry", ID: id.String()}
	}
	entry.Status = domain.OutboxStatusDispatched
	entry.UpdatedAt = time.Now()
	return nil
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, attempts int, lastError string, terminal bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "outbox entry", ID: id.String()}
	}
	entry.Attempts = attempts
	entry.LastError = &lastError
	if terminal {
		entry.Status = domain.OutboxStatusFailed
	}
	entry.UpdatedAt = time.Now()
	return nil
}

type OrderEventRepository struct {
	mu     sync.Mutex
	events map[uuid.UUID][]*domain.OrderEvent
}

func NewOrderEventRepository() *OrderEventRepository {
	return &OrderEventRepository{events: make(map[uuid.UUID][]*domain.OrderEvent)}
}

func (r *OrderEventRepository) Create(ctx context.Context, event *domain.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.CreatedAt = time.Now()
	copied := *event
	r.events[event.OrderID] = append(r.events[event.OrderID], &copied)
	return nil
}

func (r *OrderEventRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := r.events[orderID]
	out := make([]*domain.OrderEvent, 0, len(events))
	for _, event := range events {
		copied := *event
		out = append(out, &copied)
	}
	return out, nil
}

type IdempotencyKeyRepository struct {
	mu   sync.Mutex
	keys map[string]*domain.IdempotencyKey
}

func NewIdempotencyKeyRepository() *IdempotencyKeyRepository {
	return &IdempotencyKeyRepository{keys: make(map[string]*domain.IdempotencyKey)}
}

func (r *IdempotencyKeyRepository) GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.keys[key]
	if !ok {
		return nil, nil
	}
	copied := *existing
	return &copied, nil
}

func (r *IdempotencyKeyRepository) Create(ctx context.Context, key *domain.IdempotencyKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.keys[key.Key]; exists {
		return &errors.ErrConflict{Message: "idempotency key already exists"}
	}
	key.CreatedAt = time.Now()
	copied := *key
	r.keys[key.Key] = &copied
	return nil
}

type ShippingMethodRepository struct {
	mu      sync.Mutex
	methods map[uuid.UUID]*domain.ShippingMethod
}

func NewShippingMethodRepository() *ShippingMethodRepository {
	return &ShippingMethodRepository{methods: make(map[uuid.UUID]*domain.ShippingMethod)}
}

func (r *ShippingMethodRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ShippingMethod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	method, ok := r.methods[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "shipping method", ID: id.String()}
	}
	copied := *method
	return &copied, nil
}

func (r *ShippingMethodRepository) Create(ctx context.Context, method *domain.ShippingMethod) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if method.ID == uuid.Nil {
		method.ID = uuid.New()
	}
	method.CreatedAt = time.Now()
	copied := *method
	r.methods[method.ID] = &copied
	return nil
}

type CouponRepository struct {
	mu      sync.Mutex
	coupons map[string]*domain.Coupon
}

func NewCouponRepository() *CouponRepository {
	return &CouponRepository{coupons: make(map[string]*domain.Coupon)}
}

func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	coupon, ok := r.coupons[code]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "coupon", ID: code}
	}
	copied := *coupon
	return &copied, nil
}

func (r *CouponRepository) IncrementUsage(ctx context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	coupon, ok := r.coupons[code]
	if !ok {
		return &errors.ErrNotFound{Resource: "coupon", ID: code}
	}
	coupon.UsedCount++
	return nil
}

func (r *CouponRepository) Create(ctx context.Context, coupon *domain.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if coupon.ID == uuid.Nil {
		coupon.ID = uuid.New()
	}
	coupon.CreatedAt = time.Now()
	copied := *coupon
	r.coupons[coupon.Code] = &copied
	return nil
}
