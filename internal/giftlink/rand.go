package giftlink

import (
	crand "crypto/rand"
	"math/big"
)

// Rand 随机源
// 盲盒分账的抽取金额决定真实转账，这里收敛成单一注入点：
// 生产用 crypto/rand，测试注入确定性序列即可复现吸收余额的守恒场景。
type Rand interface {
	// Draw 返回 [0, max) 区间内的均匀随机数，max 必须为正
	Draw(max *big.Int) (*big.Int, error)
}

type cryptoRand struct{}

// NewCryptoRand 创建基于 crypto/rand 的随机源
func NewCryptoRand() Rand {
	return cryptoRand{}
}

// Draw 均匀抽取 [0, max)
func (cryptoRand) Draw(max *big.Int) (*big.Int, error) {
	if max == nil || max.Sign() <= 0 {
		return nil, ErrInvalidParameters
	}
	return crand.Int(crand.Reader, max)
}
