package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/config"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/domain"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/repository"
)

// OutboxDispatcher drains the outbox table: pending side effects written
// alongside state transitions are delivered here, out of the request path.
// A crash between transition and delivery loses nothing; the row is still
// pending on restart.
type OutboxDispatcher struct {
	outbox      repository.OutboxRepository
	notifier    Notifier
	renderer    DocumentRenderer
	batchSize   int
	maxAttempts int
	logger      *zap.Logger
}

// NewOutboxDispatcher creates a new outbox dispatcher
func NewOutboxDispatcher(
	outbox repository.OutboxRepository,
	notifier Notifier,
	renderer DocumentRenderer,
	cfg config.OutboxConfig,
	logger *zap.Logger,
) *OutboxDispatcher {
	return &OutboxDispatcher{
		outbox:      outbox,
		notifier:    notifier,
		renderer:    renderer,
		batchSize:   cfg.BatchSize,
		maxAttempts: cfg.MaxAttempts,
		logger:      logger,
	}
}

// DispatchOnce drains one batch of pending entries and reports how many
// were delivered
func (d *OutboxDispatcher) DispatchOnce(ctx context.Context) (int, error) {
	entries, err := d.outbox.ListPending(ctx, d.batchSize)
	if err != nil {
		return 0, err
	}

	dispatched := 0
	for _, entry := range entries {
		if err := d.deliver(ctx, entry); err != nil {
			attempts := entry.Attempts + 1
			terminal := attempts >= d.maxAttempts
			d.logger.Warn("Outbox delivery failed",
				zap.String("entry_id", entry.ID.String()),
				zap.String("effect_type", entry.EffectType),
				zap.Int("attempts", attempts),
				zap.Bool("terminal", terminal),
				zap.Error(err),
			)
			if markErr := d.outbox.MarkFailed(ctx, entry.ID, attempts, err.Error(), terminal); markErr != nil {
				d.logger.Error("Failed to mark outbox entry failed",
					zap.String("entry_id", entry.ID.String()), zap.Error(markErr))
			}
			continue
		}
		if err := d.outbox.MarkDispatched(ctx, entry.ID); err != nil {
			d.logger.Error("Failed to mark outbox entry dispatched",
				zap.String("entry_id", entry.ID.String()), zap.Error(err))
			continue
		}
		dispatched++
	}
	return dispatched, nil
}

func (d *OutboxDispatcher) deliver(ctx context.Context, entry *domain.OutboxEntry) error {
	switch entry.EffectType {
	case domain.EffectTypeNotify:
		return d.notifier.Notify(ctx, entry.Event, entry.SubjectID, entry.Payload)
	case domain.EffectTypeRenderInvoice:
		return d.renderer.RenderInvoice(ctx, entry.SubjectID)
	default:
		return fmt.Errorf("unknown outbox effect type %q", entry.EffectType)
	}
}

// RunOutboxDispatchLoop dispatches once, then every pollInterval. Call
// from a goroutine; returns when ctx is cancelled.
func RunOutboxDispatchLoop(ctx context.Context, dispatcher *OutboxDispatcher, pollInterval time.Duration, logger *zap.Logger) {
	if _, err := dispatcher.DispatchOnce(ctx); err != nil {
		logger.Error("Outbox dispatch failed", zap.Error(err))
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := dispatcher.DispatchOnce(ctx); err != nil {
				logger.Error("Outbox dispatch failed", zap.Error(err))
			}
		}
	}
}
