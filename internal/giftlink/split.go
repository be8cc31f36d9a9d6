package giftlink

import "math/big"

// 盲盒抽取区间系数：[ceil(0.05 * avg), floor(1.5 * avg)]
var (
	mysteryLowerNum = big.NewInt(5)
	mysteryUpperNum = big.NewInt(150)
	mysteryDenom    = big.NewInt(100)
)

// NextPayout 计算下一次领取的金额
// 对同一快照可重复（预览）调用；盲盒模式外无任何随机性。
// 两种模式的最后一份都直接取走 remaining，保证
// sum(payouts) + remaining_final == distributable 精确成立。
func NextPayout(g *Gift, r Rand) (*big.Int, error) {
	if g == nil {
		return nil, ErrGiftNotFound
	}
	slotsLeft := g.SlotsLeft()
	if slotsLeft == 0 || g.Remaining == nil || g.Remaining.Sign() == 0 {
		return nil, ErrExhausted
	}
	// 余额不足以保证每份至少 1 个最小单位
	if g.Remaining.Cmp(big.NewInt(int64(slotsLeft))) < 0 {
		return nil, ErrDegenerateSplit
	}
	if slotsLeft == 1 {
		return new(big.Int).Set(g.Remaining), nil
	}

	switch g.SplitMode {
	case SplitEven:
		return evenPayout(g)
	case SplitMystery:
		return mysteryPayout(g, r, slotsLeft)
	default:
		return nil, ErrInvalidParameters
	}
}

// evenPayout 均分模式：floor(distributable / totalSlots)
func evenPayout(g *Gift) (*big.Int, error) {
	payout := g.Distributable()
	payout.Div(payout, big.NewInt(int64(g.TotalSlots)))
	if payout.Sign() <= 0 {
		return nil, ErrDegenerateSplit
	}
	if payout.Cmp(g.Remaining) > 0 {
		return nil, ErrInsufficientRemaining
	}
	return payout, nil
}

// mysteryPayout 盲盒模式：在平均值附近的区间内均匀抽取
func mysteryPayout(g *Gift, r Rand, slotsLeft uint32) (*big.Int, error) {
	if r == nil {
		return nil, ErrInvalidParameters
	}
	average := new(big.Int).Div(g.Remaining, big.NewInt(int64(slotsLeft)))

	// lower = ceil(avg * 5 / 100)
	lower := new(big.Int).Mul(average, mysteryLowerNum)
	lower.Add(lower, big.NewInt(99))
	lower.Div(lower, mysteryDenom)
	if lower.Sign() <= 0 {
		lower.SetInt64(1)
	}

	// upper = floor(avg * 150 / 100)
	upper := new(big.Int).Mul(average, mysteryUpperNum)
	upper.Div(upper, mysteryDenom)
	if upper.Cmp(g.Remaining) > 0 {
		upper.Set(g.Remaining)
	}
	if upper.Cmp(lower) < 0 {
		upper.Set(lower)
	}

	// payout = lower + draw([0, upper-lower+1))
	span := new(big.Int).Sub(upper, lower)
	span.Add(span, big.NewInt(1))
	offset, err := r.Draw(span)
	if err != nil {
		return nil, err
	}
	if offset.Sign() < 0 || offset.Cmp(span) >= 0 {
		return nil, ErrInvalidParameters
	}
	payout := new(big.Int).Add(lower, offset)
	if payout.Cmp(g.Remaining) > 0 {
		return nil, ErrInsufficientRemaining
	}
	return payout, nil
}
