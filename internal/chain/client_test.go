package chain

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/giftlink-next/internal/giftlink"
)

func newRPCServer(t *testing.T, result string, rpcErr *rpcError) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode rpc request failed: %v", err)
		}
		if req.Method != "eth_call" {
			t.Fatalf("unexpected method: %s", req.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rpcResponse{Result: result, Error: rpcErr})
	}))
}

func testClientConfig(url string) Config {
	return Config{
		RPCURL:       url,
		ChainID:      84532,
		GiftAddress:  "0x3333333333333333333333333333333333333333",
		TokenAddress: "0x4444444444444444444444444444444444444444",
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got: %v", err)
	}
	cfg := testClientConfig("http://localhost:8545")
	cfg.ChainID = 0
	if _, err := NewClient(cfg); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid for zero chain id, got: %v", err)
	}
}

func TestReadGift(t *testing.T) {
	gift := &giftlink.Gift{
		ID:          5,
		Sender:      "0x1111111111111111111111111111111111111111",
		TotalAmount: big.NewInt(1_000_000),
		Remaining:   big.NewInt(1_000_000),
		Expiry:      1_900_000_000,
		TotalSlots:  2,
		ClaimHash:   giftlink.Commit([]byte("rpc")),
		SplitMode:   giftlink.SplitEven,
	}
	server := newRPCServer(t, "0x"+hex.EncodeToString(EncodeGiftReturn(gift)), nil)
	defer server.Close()

	client, err := NewClient(testClientConfig(server.URL))
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	snapshot, err := client.ReadGift(context.Background(), 5)
	if err != nil {
		t.Fatalf("read gift failed: %v", err)
	}
	if snapshot.ID != 5 || snapshot.Sender != gift.Sender {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	if snapshot.Remaining.Cmp(big.NewInt(1_000_000)) != 0 {
		t.Fatalf("unexpected remaining: %s", snapshot.Remaining)
	}
}

func TestReadGiftZeroSender(t *testing.T) {
	empty := &giftlink.Gift{
		Sender:      "0x0000000000000000000000000000000000000000",
		TotalAmount: big.NewInt(0),
		Remaining:   big.NewInt(0),
	}
	server := newRPCServer(t, "0x"+hex.EncodeToString(EncodeGiftReturn(empty)), nil)
	defer server.Close()

	client, err := NewClient(testClientConfig(server.URL))
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if _, err := client.ReadGift(context.Background(), 404); !errors.Is(err, ErrGiftNotFound) {
		t.Fatalf("expected ErrGiftNotFound, got: %v", err)
	}
}

func TestReadGiftRPCError(t *testing.T) {
	server := newRPCServer(t, "", &rpcError{Code: -32000, Message: "execution reverted"})
	defer server.Close()

	client, err := NewClient(testClientConfig(server.URL))
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if _, err := client.ReadGift(context.Background(), 1); !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got: %v", err)
	}
}

func TestBuildTxRequest(t *testing.T) {
	client, err := NewClient(testClientConfig("http://localhost:8545"))
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	intent := giftlink.Intent{
		Function: giftlink.FuncRefund,
		Args:     []giftlink.Arg{{Type: "uint256", Value: big.NewInt(9)}},
	}
	tx, dataHex, err := client.BuildTxRequest(intent)
	if err != nil {
		t.Fatalf("build tx request failed: %v", err)
	}
	if tx.ChainID != "eip155:84532" {
		t.Fatalf("unexpected chain id: %s", tx.ChainID)
	}
	if tx.Method != "eth_sendTransaction" {
		t.Fatalf("unexpected method: %s", tx.Method)
	}
	if len(tx.Params) != 1 || tx.Params[0].To != client.GiftAddress() {
		t.Fatalf("unexpected params: %+v", tx.Params)
	}
	if tx.Params[0].Data != dataHex || len(dataHex) != 2+2*(4+32) {
		t.Fatalf("unexpected calldata: %s", dataHex)
	}
}
