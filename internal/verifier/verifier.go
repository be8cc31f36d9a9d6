package verifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	ErrConfigInvalid   = errors.New("verifier config invalid")
	ErrRequestFailed   = errors.New("verifier request failed")
	ErrResponseInvalid = errors.New("verifier response invalid")
)

const (
	defaultBaseURL = "https://api.neynar.com"
	verifyPath     = "/v2/farcaster/frame/verify"
	defaultTimeout = 10 * time.Second
)

// Config 验证网关配置
type Config struct {
	BaseURL        string `json:"base_url"` // 网关地址，默认官方 API
	APIKey         string `json:"api_key"`  // API Key
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// Result 验证网关返回的请求者身份
type Result struct {
	Valid        bool   // 请求是否有效
	ButtonIndex  int    // 按下的按钮序号
	ActorID      uint64 // 请求者 fid
	ActorAddress string // 请求者验证过的收款地址，可能为空
}

// Client 交互验证客户端
// 核心只消费网关产出的 {valid, actionIndex, actorId, actorAddress}，
// 签名校验逻辑完全在网关侧。
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient 创建验证客户端
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrConfigInvalid
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
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

type verifyResponse struct {
	Valid      bool `json:"valid"`
	Button     int  `json:"button"`
	Interactor struct {
		FID              uint64   `json:"fid"`
		VerifiedAccounts []string `json:"verified_accounts"`
	} `json:"interactor"`
}

// Verify 转发交互载荷给网关并解析身份结论
func (c *Client) Verify(ctx context.Context, payload json.RawMessage) (*Result, error) {
	if c == nil || c.http == nil {
		return nil, ErrConfigInvalid
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.cfg.BaseURL, "/")+verifyPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api_key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
	}

	var parsed verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}

	result := &Result{
		Valid:       parsed.Valid,
		ButtonIndex: parsed.Button,
		ActorID:     parsed.Interactor.FID,
	}
	if len(parsed.Interactor.VerifiedAccounts) > 0 {
		result.ActorAddress = strings.ToLower(strings.TrimSpace(parsed.Interactor.VerifiedAccounts[0]))
	}
	return result, nil
}
