package giftlink

import (
	"math/big"
	"strings"
)

// ClaimAttempt 单次领取请求（瞬态，不落库）
type ClaimAttempt struct {
	GiftID       uint64
	ActorID      uint64 // 验证网关返回的领取者编号（fid）
	ActorAddress string // 领取者收款地址
	Secret       []byte // 明文口令
}

// ClaimDecision 授权通过的领取决定
type ClaimDecision struct {
	GiftID       uint64
	ActorID      uint64
	ActorAddress string
	Payout       *big.Int
	Updated      *Gift // 按本次快照推演出的下一状态
}

// AuthorizeClaim 按固定顺序评估领取请求
// 快照可能已经过期（并发领取都会基于同一快照授权），
// 引擎只负责对看到的快照给出正确意图，双花由账本原子拒绝。
// 检查顺序：存在性 → 过期 → 耗尽 → 口令 → 分账。
func AuthorizeClaim(g *Gift, attempt ClaimAttempt, now int64, r Rand) (*ClaimDecision, error) {
	if g == nil {
		return nil, ErrGiftNotFound
	}
	if now >= g.Expiry {
		return nil, ErrExpired
	}
	if g.Remaining == nil || g.Remaining.Sign() == 0 || g.ClaimedSlots >= g.TotalSlots {
		return nil, ErrExhausted
	}
	if strings.TrimSpace(attempt.ActorAddress) == "" {
		return nil, ErrUnverifiedActor
	}
	if !VerifyEither(attempt.ActorID, attempt.Secret, g.ClaimHash) {
		return nil, ErrBadSecret
	}
	payout, err := NextPayout(g, r)
	if err != nil {
		return nil, err
	}
	updated, err := g.ApplyClaim(payout)
	if err != nil {
		return nil, err
	}
	return &ClaimDecision{
		GiftID:       g.ID,
		ActorID:      attempt.ActorID,
		ActorAddress: strings.ToLower(strings.TrimSpace(attempt.ActorAddress)),
		Payout:       payout,
		Updated:      updated,
	}, nil
}

// RefundDecision 授权通过的退款决定
type RefundDecision struct {
	GiftID  uint64
	Sender  string
	Amount  *big.Int
	Updated *Gift
}

// AuthorizeRefund 评估过期退款请求
// 仅创建者、仅过期后、仅余额非零时放行。
func AuthorizeRefund(g *Gift, caller string, now int64) (*RefundDecision, error) {
	if g == nil {
		return nil, ErrGiftNotFound
	}
	amount := new(big.Int)
	if g.Remaining != nil {
		amount.Set(g.Remaining)
	}
	updated, err := g.ApplyRefund(caller, now)
	if err != nil {
		return nil, err
	}
	return &RefundDecision{
		GiftID:  g.ID,
		Sender:  g.Sender,
		Amount:  amount,
		Updated: updated,
	}, nil
}
