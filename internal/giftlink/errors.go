package giftlink

import "errors"

// 引擎错误：任一校验失败即终止本次请求，错误原样上抛，核心内部不做重试。
var (
	ErrInvalidParameters     = errors.New("giftlink: invalid parameters")
	ErrGiftNotFound          = errors.New("giftlink: gift not found")
	ErrExpired               = errors.New("giftlink: gift expired")
	ErrExhausted             = errors.New("giftlink: gift exhausted")
	ErrBadSecret             = errors.New("giftlink: bad claim secret")
	ErrDegenerateSplit       = errors.New("giftlink: degenerate split")
	ErrNotSender             = errors.New("giftlink: caller is not sender")
	ErrNotExpired            = errors.New("giftlink: gift not expired")
	ErrNothingToRefund       = errors.New("giftlink: nothing to refund")
	ErrUnverifiedActor       = errors.New("giftlink: unverified actor")
	ErrInsufficientRemaining = errors.New("giftlink: insufficient remaining")
)
