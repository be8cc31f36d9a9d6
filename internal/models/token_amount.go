package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"math/big"

	"github.com/shopspring/decimal"
)

// TokenAmount 统一代币金额类型（最小单位整数，uint256 宽度）
// 数据库按 decimal(78,0) 存储，JSON 统一输出十进制整数字符串。
type TokenAmount struct {
	decimal.Decimal
}

// NewTokenAmountFromBigInt 从 big.Int 创建金额
func NewTokenAmountFromBigInt(value *big.Int) TokenAmount {
	if value == nil {
		return TokenAmount{}
	}
	return TokenAmount{Decimal: decimal.NewFromBigInt(value, 0)}
}

// NewTokenAmountFromString 解析十进制整数字符串
func NewTokenAmountFromString(value string) (TokenAmount, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return TokenAmount{}, err
	}
	if !d.IsInteger() || d.Sign() < 0 {
		return TokenAmount{}, errors.New("token amount must be a non-negative integer")
	}
	return TokenAmount{Decimal: d}, nil
}

// BigInt 转换为 big.Int
func (a TokenAmount) BigInt() *big.Int {
	return a.Decimal.Truncate(0).BigInt()
}

// MarshalJSON 输出整数字符串
func (a TokenAmount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Decimal.Truncate(0).String())
}

// UnmarshalJSON 解析金额（字符串或数字）
func (a *TokenAmount) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := NewTokenAmountFromString(s)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	}
	var d decimal.Decimal
	if err := json.Unmarshal(b, &d); err != nil {
		return err
	}
	a.Decimal = d.Truncate(0)
	return nil
}

// Value 用于数据库写入
func (a TokenAmount) Value() (driver.Value, error) {
	return a.Decimal.Truncate(0).Value()
}

// Scan 用于数据库读取
func (a *TokenAmount) Scan(value interface{}) error {
	if err := a.Decimal.Scan(value); err != nil {
		return err
	}
	a.Decimal = a.Decimal.Truncate(0)
	return nil
}

// String 返回十进制整数格式
func (a TokenAmount) String() string {
	return a.Decimal.Truncate(0).String()
}
