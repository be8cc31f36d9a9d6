package giftlink

import (
	"math/big"
	"strings"
)

// 分账模式常量
const (
	SplitEven    = "even"
	SplitMystery = "mystery"
)

// FeeBpsMax 手续费上限（万分比）
const FeeBpsMax = 10000

// Gift 礼包快照
// 权威可变状态（remaining / claimedSlots）由外部账本持有，
// 引擎只对读取到的一次性快照做纯函数转移，不持有也不回写共享状态。
type Gift struct {
	ID           uint64   // 账本分配的礼包编号
	Sender       string   // 创建者地址
	TotalAmount  *big.Int // 锁定总额（最小代币单位）
	Remaining    *big.Int // 可领余额（按扣费后可分配池计）
	Expiry       int64    // 过期时间（Unix 秒）
	TotalSlots   uint32   // 领取份数上限
	ClaimedSlots uint32   // 已领份数
	ClaimHash    Hash     // 口令承诺
	FeeBps       uint32   // 手续费（万分比）
	SplitMode    string   // 分账模式 even / mystery
}

// NewGiftInput 创建礼包输入
type NewGiftInput struct {
	ID          uint64
	Sender      string
	TotalAmount *big.Int
	Expiry      int64
	TotalSlots  uint32
	ClaimHash   Hash
	FeeBps      uint32
	SplitMode   string
}

// NewGift 构建创建时刻的礼包快照
// remaining 初始化为扣费后的可分配池，之后所有分账与退款都只操作该池。
func NewGift(input NewGiftInput, now int64) (*Gift, error) {
	if input.TotalAmount == nil || input.TotalAmount.Sign() <= 0 {
		return nil, ErrInvalidParameters
	}
	if input.TotalSlots == 0 {
		return nil, ErrInvalidParameters
	}
	if input.Expiry <= now {
		return nil, ErrInvalidParameters
	}
	if input.FeeBps > FeeBpsMax {
		return nil, ErrInvalidParameters
	}
	mode := strings.TrimSpace(input.SplitMode)
	if mode != SplitEven && mode != SplitMystery {
		return nil, ErrInvalidParameters
	}
	sender := strings.ToLower(strings.TrimSpace(input.Sender))
	if sender == "" {
		return nil, ErrInvalidParameters
	}
	return &Gift{
		ID:           input.ID,
		Sender:       sender,
		TotalAmount:  new(big.Int).Set(input.TotalAmount),
		Remaining:    distributablePool(input.TotalAmount, input.FeeBps),
		Expiry:       input.Expiry,
		TotalSlots:   input.TotalSlots,
		ClaimedSlots: 0,
		ClaimHash:    input.ClaimHash,
		FeeBps:       input.FeeBps,
		SplitMode:    mode,
	}, nil
}

// Distributable 扣费后的可分配池
func (g *Gift) Distributable() *big.Int {
	return distributablePool(g.TotalAmount, g.FeeBps)
}

// SlotsLeft 剩余可领份数
func (g *Gift) SlotsLeft() uint32 {
	if g.ClaimedSlots >= g.TotalSlots {
		return 0
	}
	return g.TotalSlots - g.ClaimedSlots
}

// Clone 复制快照
func (g *Gift) Clone() *Gift {
	if g == nil {
		return nil
	}
	cloned := *g
	cloned.TotalAmount = new(big.Int).Set(g.TotalAmount)
	cloned.Remaining = new(big.Int).Set(g.Remaining)
	return &cloned
}

// ApplyClaim 应用一次领取，返回新快照
func (g *Gift) ApplyClaim(payout *big.Int) (*Gift, error) {
	if g == nil {
		return nil, ErrGiftNotFound
	}
	if payout == nil || payout.Sign() <= 0 {
		return nil, ErrInvalidParameters
	}
	if g.Remaining == nil || payout.Cmp(g.Remaining) > 0 {
		return nil, ErrInsufficientRemaining
	}
	if g.ClaimedSlots >= g.TotalSlots {
		return nil, ErrExhausted
	}
	next := g.Clone()
	next.Remaining.Sub(next.Remaining, payout)
	next.ClaimedSlots++
	// claimedSlots 到顶时 remaining 必须清零：最后一份由分账引擎吸收全部余额
	if next.ClaimedSlots == next.TotalSlots && next.Remaining.Sign() != 0 {
		return nil, ErrInsufficientRemaining
	}
	return next, nil
}

// ApplyRefund 应用过期退款，返回新快照
func (g *Gift) ApplyRefund(caller string, now int64) (*Gift, error) {
	if g == nil {
		return nil, ErrGiftNotFound
	}
	if !strings.EqualFold(strings.TrimSpace(caller), g.Sender) {
		return nil, ErrNotSender
	}
	if now < g.Expiry {
		return nil, ErrNotExpired
	}
	if g.Remaining == nil || g.Remaining.Sign() == 0 {
		return nil, ErrNothingToRefund
	}
	next := g.Clone()
	next.Remaining.SetInt64(0)
	return next, nil
}

// distributablePool 计算扣费后的可分配池 total * (10000 - feeBps) / 10000
func distributablePool(total *big.Int, feeBps uint32) *big.Int {
	if total == nil || total.Sign() < 0 || feeBps > FeeBpsMax {
		return big.NewInt(0)
	}
	pool := new(big.Int).Mul(total, big.NewInt(int64(FeeBpsMax-feeBps)))
	return pool.Div(pool, big.NewInt(FeeBpsMax))
}
