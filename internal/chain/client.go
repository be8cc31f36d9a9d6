package chain

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/giftlink-next/internal/giftlink"
)

var (
	ErrConfigInvalid   = errors.New("chain config invalid")
	ErrRequestFailed   = errors.New("chain request failed")
	ErrResponseInvalid = errors.New("chain response invalid")
	ErrGiftNotFound    = errors.New("chain gift not found")
)

const (
	defaultTimeout = 10 * time.Second
	funcGifts      = "gifts(uint256)"
)

// Config 链访问配置
type Config struct {
	RPCURL         string // JSON-RPC 节点地址
	ChainID        int64  // 链 ID（Base 8453 / Base Sepolia 84532）
	GiftAddress    string // GiftLink 合约地址
	TokenAddress   string // 代币合约地址
	TimeoutSeconds int
}

// Client 账本只读访问与意图编码客户端
// 引擎不拥有链上状态：这里只负责读取一次性快照和编码调用数据，
// 签名与广播由外部钱包完成。
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient 创建链客户端
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.RPCURL) == "" || strings.TrimSpace(cfg.GiftAddress) == "" {
		return nil, ErrConfigInvalid
	}
	if cfg.ChainID <= 0 {
		return nil, ErrConfigInvalid
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
	}, nil
}

// GiftAddress 合约地址
func (c *Client) GiftAddress() string {
	return c.cfg.GiftAddress
}

// EIP155ChainID frame 交易响应使用的链标识
func (c *Client) EIP155ChainID() string {
	return fmt.Sprintf("eip155:%d", c.cfg.ChainID)
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result string    `json:"result"`
	Error  *rpcError `json:"error"`
}

type callParams struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

// ReadGift 通过 eth_call 读取礼包快照
// 返回的是账本某一时点的一致性快照，调用方必须按可能过期处理。
func (c *Client) ReadGift(ctx context.Context, id uint64) (*giftlink.Gift, error) {
	callData, err := EncodeIntent(giftlink.Intent{
		Function: funcGifts,
		Args: []giftlink.Arg{
			{Type: "uint256", Value: new(big.Int).SetUint64(id)},
		},
	})
	if err != nil {
		return nil, err
	}

	raw, err := c.call(ctx, "eth_call", []interface{}{
		callParams{To: c.cfg.GiftAddress, Data: "0x" + hex.EncodeToString(callData)},
		"latest",
	})
	if err != nil {
		return nil, err
	}

	data, err := hex.DecodeString(strings.TrimPrefix(raw, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	gift, err := DecodeGiftReturn(id, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	// 合约对未分配的编号返回零值结构
	if gift.Sender == "0x0000000000000000000000000000000000000000" {
		return nil, ErrGiftNotFound
	}
	return gift, nil
}

func (c *Client) call(ctx context.Context, method string, params []interface{}) (string, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.RPCURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
	}

	var parsed rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrRequestFailed, parsed.Error.Message)
	}
	if strings.TrimSpace(parsed.Result) == "" {
		return "", ErrResponseInvalid
	}
	return parsed.Result, nil
}

// TxParams frame 钱包交易请求参数
type TxParams struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

// TxRequest frame 钱包交易请求
type TxRequest struct {
	ChainID string     `json:"chainId"`
	Method  string     `json:"method"`
	Params  []TxParams `json:"params"`
}

// BuildTxRequest 将调用意图包装为 frame 交易响应
func (c *Client) BuildTxRequest(intent giftlink.Intent) (*TxRequest, string, error) {
	callData, err := EncodeIntent(intent)
	if err != nil {
		return nil, "", err
	}
	dataHex := "0x" + hex.EncodeToString(callData)
	return &TxRequest{
		ChainID: c.EIP155ChainID(),
		Method:  "eth_sendTransaction",
		Params:  []TxParams{{To: c.cfg.GiftAddress, Data: dataHex}},
	}, dataHex, nil
}
