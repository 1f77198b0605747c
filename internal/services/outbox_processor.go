package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/pagecomposer/domain"
	"github.com/fastygo/pagecomposer/internal/infrastructure/buffer"
	"github.com/fastygo/pagecomposer/repository"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// ProcessorConfig controls how frequently the outbox is drained.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Retention  time.Duration
}

// OutboxProcessor replays reorder batches the gateway rejected.
type OutboxProcessor struct {
	store   *buffer.Store
	monitor ConnectionHealth
	gateway repository.PersistenceGateway
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     ProcessorConfig
}

func NewOutboxProcessor(
	store *buffer.Store,
	monitor ConnectionHealth,
	gateway repository.PersistenceGateway,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *OutboxProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	op := &OutboxProcessor{
		store:   store,
		monitor: monitor,
		gateway: gateway,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = op.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := op.Drain(ctx); err != nil {
			op.logger.Error("outbox drain failed", zap.Error(err))
		}
	})
	if cfg.Retention > 0 {
		_, _ = op.cron.AddFunc("@hourly", op.cleanup)
	}

	return op
}

// Start launches the cron scheduler.
func (op *OutboxProcessor) Start() {
	if op == nil || op.cron == nil {
		return
	}
	op.cron.Start()
	op.logger.Info("outbox processor started")
}

// Stop gracefully stops the scheduler.
func (op *OutboxProcessor) Stop(ctx context.Context) {
	if op == nil || op.cron == nil {
		return
	}
	stopCtx := op.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	op.logger.Info("outbox processor stopped")
}

// Drain replays pending items synchronously.
func (op *OutboxProcessor) Drain(ctx context.Context) error {
	if op == nil || op.store == nil {
		return nil
	}
	if op.monitor != nil && !op.monitor.IsOnline() {
		op.logger.Debug("skipping outbox drain (offline)")
		return nil
	}

	items, err := op.store.GetBatch(op.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		if !op.stillPending(item) {
			op.logger.Debug("outbox item superseded before replay", zap.String("item_id", item.ID), zap.String("page_id", item.PageID))
			continue
		}
		if err := op.processItem(ctx, item); err != nil {
			op.logger.Error("failed to replay outbox item",
				zap.String("item_id", item.ID),
				zap.String("page_id", item.PageID),
				zap.String("entity", item.Entity),
				zap.Error(err))

			if item.Retries+1 >= op.cfg.MaxRetries || domain.IsDomainError(err, domain.ErrCodeNotFound) {
				op.logger.Warn("dropping outbox item", zap.String("item_id", item.ID), zap.Int("retries", item.Retries+1))
				_ = op.store.Remove(item)
				continue
			}
			if err := op.store.Requeue(item, err); err != nil {
				op.logger.Error("failed to requeue outbox item", zap.Error(err))
			}
			continue
		}

		if err := op.store.Remove(item); err != nil {
			op.logger.Warn("failed to purge replayed outbox item", zap.Error(err))
		}
	}
	return nil
}

// Size returns the number of pending items.
func (op *OutboxProcessor) Size() int {
	if op == nil || op.store == nil {
		return 0
	}
	size, err := op.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (op *OutboxProcessor) cleanup() {
	removed, err := op.store.Cleanup(time.Now().Add(-op.cfg.Retention))
	if err != nil {
		op.logger.Warn("outbox cleanup failed", zap.Error(err))
		return
	}
	if removed > 0 {
		op.logger.Info("expired outbox items removed", zap.Int("count", removed))
	}
}

// stillPending reports whether item is still the queued batch for its page.
// A batch read at the start of a drain may have been superseded by a newer
// successful write while earlier items were replayed.
func (op *OutboxProcessor) stillPending(item buffer.Item) bool {
	current, ok, err := op.store.Get(item.Entity, item.PageID)
	if err != nil {
		op.logger.Warn("outbox lookup failed", zap.String("item_id", item.ID), zap.Error(err))
		return false
	}
	return ok && current.ID == item.ID
}

func (op *OutboxProcessor) processItem(ctx context.Context, item buffer.Item) error {
	if ctx == nil {
		ctx = context.Background()
	}

	switch item.Entity {
	case buffer.EntityReorder:
		var order []repository.OrderEntry
		if err := json.Unmarshal(item.Data, &order); err != nil {
			return err
		}
		return op.gateway.ReorderComponents(ctx, item.PageID, order)
	default:
		return fmt.Errorf("unsupported entity %s", item.Entity)
	}
}
