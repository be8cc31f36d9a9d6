package queue

import (
	"encoding/json"

	"github.com/giftlink-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskGiftExpirySweep 礼包过期巡检任务
	TaskGiftExpirySweep = constants.TaskGiftExpirySweep
	// TaskClaimReconcile 领取记录对账任务
	TaskClaimReconcile = constants.TaskClaimReconcile
)

// GiftExpirySweepPayload 过期巡检任务载荷
type GiftExpirySweepPayload struct {
	Limit int `json:"limit"`
}

// ClaimReconcilePayload 领取对账任务载荷
type ClaimReconcilePayload struct {
	ChainGiftID uint64 `json:"chain_gift_id"`
}

// NewGiftExpirySweepTask 创建过期巡检任务
func NewGiftExpirySweepTask(payload GiftExpirySweepPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGiftExpirySweep, body), nil
}

// NewClaimReconcileTask 创建领取对账任务
func NewClaimReconcileTask(payload ClaimReconcilePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskClaimReconcile, body), nil
}
