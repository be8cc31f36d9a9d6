package giftlink

import "math/big"

// 合约函数签名
const (
	FuncClaim  = "claim(uint256,bytes,address)"
	FuncRefund = "refund(uint256)"
)

// Arg 有序的类型化调用参数
type Arg struct {
	Type  string      // uint256 / bytes / address
	Value interface{} // *big.Int / []byte / string
}

// Intent 未执行的账本调用描述
// 纯数据结构，引擎不触达账本；签名、广播与确认都在外部钱包层完成。
type Intent struct {
	Function string
	Args     []Arg
}

// ClaimIntent 根据授权决定构造领取调用
// 调用携带明文口令：由链上合约重算承诺完成最终校验。
func ClaimIntent(decision *ClaimDecision, secret []byte) (Intent, error) {
	if decision == nil || decision.Payout == nil || decision.ActorAddress == "" {
		return Intent{}, ErrInvalidParameters
	}
	revealed := make([]byte, len(secret))
	copy(revealed, secret)
	return Intent{
		Function: FuncClaim,
		Args: []Arg{
			{Type: "uint256", Value: new(big.Int).SetUint64(decision.GiftID)},
			{Type: "bytes", Value: revealed},
			{Type: "address", Value: decision.ActorAddress},
		},
	}, nil
}

// RefundIntent 构造过期退款调用
func RefundIntent(decision *RefundDecision) (Intent, error) {
	if decision == nil {
		return Intent{}, ErrInvalidParameters
	}
	return Intent{
		Function: FuncRefund,
		Args: []Arg{
			{Type: "uint256", Value: new(big.Int).SetUint64(decision.GiftID)},
		},
	}, nil
}
