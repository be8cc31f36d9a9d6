package chain

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/giftlink-next/internal/giftlink"
)

func TestSelector(t *testing.T) {
	claim := Selector(giftlink.FuncClaim)
	refund := Selector(giftlink.FuncRefund)
	if claim == refund {
		t.Fatalf("selectors for different signatures must differ")
	}
	if claim != Selector(giftlink.FuncClaim) {
		t.Fatalf("selector not deterministic")
	}
}

func TestEncodeIntentClaimLayout(t *testing.T) {
	secret := []byte("reveal")
	intent := giftlink.Intent{
		Function: giftlink.FuncClaim,
		Args: []giftlink.Arg{
			{Type: "uint256", Value: big.NewInt(42)},
			{Type: "bytes", Value: secret},
			{Type: "address", Value: "0x2222222222222222222222222222222222222222"},
		},
	}
	data, err := EncodeIntent(intent)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	// 选择器 + 3 个头部字 + 动态尾部（长度字 + 1 个补齐数据字）
	wantLen := 4 + 3*32 + 2*32
	if len(data) != wantLen {
		t.Fatalf("expected calldata length %d, got: %d", wantLen, len(data))
	}
	sel := Selector(giftlink.FuncClaim)
	if !bytes.Equal(data[:4], sel[:]) {
		t.Fatalf("calldata must start with function selector")
	}

	// 第一个参数：uint256 礼包编号
	id := new(big.Int).SetBytes(data[4 : 4+32])
	if id.Int64() != 42 {
		t.Fatalf("expected gift id 42, got: %s", id)
	}
	// 第二个参数：bytes 偏移指向头部之后
	offset := new(big.Int).SetBytes(data[4+32 : 4+64])
	if offset.Int64() != 96 {
		t.Fatalf("expected bytes offset 96, got: %s", offset)
	}
	// 第三个参数：address 左补零
	addrWord := data[4+64 : 4+96]
	if !bytes.Equal(addrWord[:12], make([]byte, 12)) {
		t.Fatalf("address word must be left padded")
	}
	if hex.EncodeToString(addrWord[12:]) != "2222222222222222222222222222222222222222" {
		t.Fatalf("unexpected address bytes: %x", addrWord[12:])
	}
	// 尾部：长度 + 右补零内容
	length := new(big.Int).SetBytes(data[4+96 : 4+128])
	if length.Int64() != int64(len(secret)) {
		t.Fatalf("expected bytes length %d, got: %s", len(secret), length)
	}
	if !bytes.Equal(data[4+128:4+128+len(secret)], secret) {
		t.Fatalf("secret bytes not encoded verbatim")
	}
}

func TestEncodeIntentRejectsBadArgs(t *testing.T) {
	cases := []giftlink.Intent{
		{Function: "f(uint256)", Args: []giftlink.Arg{{Type: "uint256", Value: "not-a-bigint"}}},
		{Function: "f(uint256)", Args: []giftlink.Arg{{Type: "uint256", Value: big.NewInt(-1)}}},
		{Function: "f(address)", Args: []giftlink.Arg{{Type: "address", Value: "0x1234"}}},
		{Function: "f(bool)", Args: []giftlink.Arg{{Type: "bool", Value: true}}},
	}
	for i, intent := range cases {
		if _, err := EncodeIntent(intent); err == nil {
			t.Fatalf("case %d: expected encode error", i)
		}
	}
}

func TestGiftReturnRoundTrip(t *testing.T) {
	gift := &giftlink.Gift{
		ID:           11,
		Sender:       "0x1111111111111111111111111111111111111111",
		TotalAmount:  big.NewInt(1_000_000),
		Remaining:    big.NewInt(750_000),
		Expiry:       1_900_000_000,
		TotalSlots:   4,
		ClaimedSlots: 1,
		ClaimHash:    giftlink.Commit([]byte("round-trip")),
		FeeBps:       250,
		SplitMode:    giftlink.SplitMystery,
	}

	decoded, err := DecodeGiftReturn(11, EncodeGiftReturn(gift))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.Sender != gift.Sender {
		t.Fatalf("sender mismatch: %s", decoded.Sender)
	}
	if decoded.TotalAmount.Cmp(gift.TotalAmount) != 0 || decoded.Remaining.Cmp(gift.Remaining) != 0 {
		t.Fatalf("amount mismatch: %s / %s", decoded.TotalAmount, decoded.Remaining)
	}
	if decoded.Expiry != gift.Expiry || decoded.TotalSlots != 4 || decoded.ClaimedSlots != 1 {
		t.Fatalf("field mismatch: %+v", decoded)
	}
	if decoded.ClaimHash != gift.ClaimHash {
		t.Fatalf("claim hash mismatch")
	}
	if decoded.FeeBps != 250 || decoded.SplitMode != giftlink.SplitMystery {
		t.Fatalf("fee/mode mismatch: %d %s", decoded.FeeBps, decoded.SplitMode)
	}
}

func TestDecodeGiftReturnTooShort(t *testing.T) {
	if _, err := DecodeGiftReturn(1, make([]byte, 31)); err == nil {
		t.Fatalf("expected error for truncated data")
	}
}
