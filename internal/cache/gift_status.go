package cache

import (
	"context"
	"fmt"
	"time"
)

// GiftStatusSnapshot 礼包状态缓存结构
// frame 渲染与状态接口共用，减少对链上 eth_call 的压力。
type GiftStatusSnapshot struct {
	ChainGiftID  uint64 `json:"chain_gift_id"`
	Sender       string `json:"sender"`
	TotalAmount  string `json:"total_amount"`
	Remaining    string `json:"remaining"`
	TotalSlots   uint32 `json:"total_slots"`
	ClaimedSlots uint32 `json:"claimed_slots"`
	SplitMode    string `json:"split_mode"`
	Status       string `json:"status"`
	ExpiresAt    int64  `json:"expires_at"`
}

// GetGiftStatus 读取礼包状态缓存
func GetGiftStatus(ctx context.Context, chainGiftID uint64) (*GiftStatusSnapshot, bool, error) {
	var snapshot GiftStatusSnapshot
	found, err := GetJSON(ctx, giftStatusKey(chainGiftID), &snapshot)
	if err != nil || !found {
		return nil, false, err
	}
	return &snapshot, true, nil
}

// SetGiftStatus 写入礼包状态缓存
func SetGiftStatus(ctx context.Context, snapshot *GiftStatusSnapshot, ttl time.Duration) error {
	if snapshot == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return SetJSON(ctx, giftStatusKey(snapshot.ChainGiftID), snapshot, ttl)
}

// DelGiftStatus 删除礼包状态缓存
// 授权领取、退款等写路径成功后调用，避免读到过期余额。
func DelGiftStatus(ctx context.Context, chainGiftID uint64) error {
	return Del(ctx, giftStatusKey(chainGiftID))
}

func giftStatusKey(chainGiftID uint64) string {
	return fmt.Sprintf("gift:status:%d", chainGiftID)
}
