package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/giftlink-next/internal/logger"
	"github.com/giftlink-next/internal/provider"
	"github.com/giftlink-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskGiftExpirySweep, c.handleGiftExpirySweep)
	mux.HandleFunc(queue.TaskClaimReconcile, c.handleClaimReconcile)
}

func (c *Consumer) handleGiftExpirySweep(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.GiftExpirySweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_gift_expiry_sweep_unmarshal_failed", "error", err)
		return err
	}
	if c.GiftService == nil {
		logger.Warnw("worker_gift_expiry_sweep_skip_service_nil")
		return nil
	}
	processed, err := c.GiftService.MarkExpired(time.Now(), payload.Limit)
	if err != nil {
		logger.Warnw("worker_gift_expiry_sweep_failed", "error", err)
		return err
	}
	logger.Debugw("worker_gift_expiry_sweep_done", "processed", processed)
	return nil
}

func (c *Consumer) handleClaimReconcile(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.ClaimReconcilePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_claim_reconcile_unmarshal_failed", "error", err)
		return err
	}
	if payload.ChainGiftID == 0 {
		logger.Debugw("worker_claim_reconcile_skip_invalid_payload", "chain_gift_id", payload.ChainGiftID)
		return nil
	}
	if c.GiftService == nil {
		logger.Warnw("worker_claim_reconcile_skip_service_nil", "chain_gift_id", payload.ChainGiftID)
		return nil
	}
	if err := c.GiftService.ReconcileClaim(ctx, payload.ChainGiftID); err != nil {
		logger.Warnw("worker_claim_reconcile_failed", "chain_gift_id", payload.ChainGiftID, "error", err)
		return err
	}
	return nil
}
