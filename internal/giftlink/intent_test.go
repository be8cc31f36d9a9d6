package giftlink

import (
	"bytes"
	"errors"
	"math/big"
	"testing"
)

func TestClaimIntent(t *testing.T) {
	decision := &ClaimDecision{
		GiftID:       42,
		ActorID:      7,
		ActorAddress: "0x2222222222222222222222222222222222222222",
		Payout:       big.NewInt(1000),
	}
	secret := []byte("reveal-me")

	intent, err := ClaimIntent(decision, secret)
	if err != nil {
		t.Fatalf("build claim intent failed: %v", err)
	}
	if intent.Function != FuncClaim {
		t.Fatalf("unexpected function: %s", intent.Function)
	}
	if len(intent.Args) != 3 {
		t.Fatalf("expected 3 args, got: %d", len(intent.Args))
	}
	if intent.Args[0].Type != "uint256" || intent.Args[1].Type != "bytes" || intent.Args[2].Type != "address" {
		t.Fatalf("unexpected arg types: %+v", intent.Args)
	}
	if id, ok := intent.Args[0].Value.(*big.Int); !ok || id.Uint64() != 42 {
		t.Fatalf("unexpected gift id arg: %+v", intent.Args[0].Value)
	}
	if addr, ok := intent.Args[2].Value.(string); !ok || addr != decision.ActorAddress {
		t.Fatalf("unexpected address arg: %+v", intent.Args[2].Value)
	}

	// 口令参数是副本，调用方后续改动不影响意图
	revealed, ok := intent.Args[1].Value.([]byte)
	if !ok || !bytes.Equal(revealed, []byte("reveal-me")) {
		t.Fatalf("unexpected secret arg: %+v", intent.Args[1].Value)
	}
	secret[0] = 'X'
	if !bytes.Equal(revealed, []byte("reveal-me")) {
		t.Fatalf("intent secret must be an independent copy")
	}
}

func TestClaimIntentInvalid(t *testing.T) {
	if _, err := ClaimIntent(nil, []byte("s")); !errors.Is(err, ErrInvalidParameters) {
		t.Fatalf("expected ErrInvalidParameters for nil decision, got: %v", err)
	}
	decision := &ClaimDecision{GiftID: 1, Payout: big.NewInt(1)}
	if _, err := ClaimIntent(decision, []byte("s")); !errors.Is(err, ErrInvalidParameters) {
		t.Fatalf("expected ErrInvalidParameters for empty address, got: %v", err)
	}
}

func TestRefundIntent(t *testing.T) {
	decision := &RefundDecision{
		GiftID: 9,
		Sender: "0x1111111111111111111111111111111111111111",
		Amount: big.NewInt(5),
	}
	intent, err := RefundIntent(decision)
	if err != nil {
		t.Fatalf("build refund intent failed: %v", err)
	}
	if intent.Function != FuncRefund {
		t.Fatalf("unexpected function: %s", intent.Function)
	}
	if len(intent.Args) != 1 || intent.Args[0].Type != "uint256" {
		t.Fatalf("unexpected args: %+v", intent.Args)
	}
	if id, ok := intent.Args[0].Value.(*big.Int); !ok || id.Uint64() != 9 {
		t.Fatalf("unexpected gift id arg: %+v", intent.Args[0].Value)
	}

	if _, err := RefundIntent(nil); !errors.Is(err, ErrInvalidParameters) {
		t.Fatalf("expected ErrInvalidParameters, got: %v", err)
	}
}
