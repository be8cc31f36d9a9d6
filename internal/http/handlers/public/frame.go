package public

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/giftlink-next/internal/cache"
	"github.com/giftlink-next/internal/chain"
	"github.com/giftlink-next/internal/constants"
	"github.com/giftlink-next/internal/giftlink"
	"github.com/giftlink-next/internal/models"
	"github.com/giftlink-next/internal/service"

	"github.com/gin-gonic/gin"
)

// framePayload frame 客户端回传的动作消息
// untrustedData 仅用于取按钮序号和输入框内容，
// 身份（fid / 收款地址）一律以验证网关返回为准。
type framePayload struct {
	UntrustedData struct {
		FID         uint64 `json:"fid"`
		ButtonIndex int    `json:"buttonIndex"`
		InputText   string `json:"inputText"`
	} `json:"untrustedData"`
	TrustedData struct {
		MessageBytes string `json:"messageBytes"`
	} `json:"trustedData"`
}

// GetFrame 渲染礼包 frame 入口页
func (h *Handler) GetFrame(c *gin.Context) {
	id, ok := parseChainGiftID(c)
	if !ok {
		return
	}
	status, err := h.GiftService.GetStatus(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, giftlink.ErrGiftNotFound) || errors.Is(err, chain.ErrGiftNotFound) {
			c.String(http.StatusNotFound, "gift not found")
			return
		}
		requestLog(c).Errorw("frame_render_failed", "chain_gift_id", id, "error", err)
		c.String(http.StatusInternalServerError, "frame unavailable")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(h.buildGiftFrame(id, status.Status)))
}

// PostFrame 处理 frame 按钮动作
// Claim 走独立 tx 接口，这里只处理状态刷新与领取后的回跳。
func (h *Handler) PostFrame(c *gin.Context) {
	id, ok := parseChainGiftID(c)
	if !ok {
		return
	}
	var payload framePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.String(http.StatusBadRequest, "bad frame payload")
		return
	}

	status, err := h.GiftService.GetStatus(c.Request.Context(), id)
	if err != nil {
		requestLog(c).Errorw("frame_action_failed", "chain_gift_id", id, "error", err)
		c.String(http.StatusInternalServerError, "frame unavailable")
		return
	}

	switch payload.UntrustedData.ButtonIndex {
	case constants.FrameButtonStatus:
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(h.buildStatusFrame(id, status)))
	default:
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(h.buildGiftFrame(id, status.Status)))
	}
}

// ClaimTx frame 钱包交易接口
// 验证交互、授权领取，返回 eth_sendTransaction 交易请求。
func (h *Handler) ClaimTx(c *gin.Context) {
	id, ok := parseChainGiftID(c)
	if !ok {
		return
	}
	rawBody, err := c.GetRawData()
	if err != nil {
		frameTxError(c, http.StatusBadRequest, "bad frame payload")
		return
	}
	var payload framePayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		frameTxError(c, http.StatusBadRequest, "bad frame payload")
		return
	}

	result, err := h.GiftService.AuthorizeClaim(c.Request.Context(), service.AuthorizeClaimInput{
		ChainGiftID:  id,
		FramePayload: rawBody,
		Secret:       strings.TrimSpace(payload.UntrustedData.InputText),
	})
	if err != nil {
		status, msg := claimTxErrorStatus(err)
		if status == http.StatusInternalServerError {
			requestLog(c).Errorw("frame_claim_tx_failed", "chain_gift_id", id, "error", err)
		}
		frameTxError(c, status, msg)
		return
	}
	c.JSON(http.StatusOK, result.TxRequest)
}

// GetFrameImage 渲染礼包状态图
// frame 客户端对图片比例有要求，固定 1.91:1 画布输出 SVG。
func (h *Handler) GetFrameImage(c *gin.Context) {
	id, ok := parseChainGiftID(c)
	if !ok {
		return
	}
	status, err := h.GiftService.GetStatus(c.Request.Context(), id)
	if err != nil {
		c.String(http.StatusNotFound, "gift not found")
		return
	}

	var b strings.Builder
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="764" height="400" viewBox="0 0 764 400">`)
	b.WriteString(`<rect width="764" height="400" fill="#1a1b23"/>`)
	fmt.Fprintf(&b, `<text x="382" y="140" text-anchor="middle" fill="#ffffff" font-size="48" font-family="sans-serif">🎁 GiftLink #%d</text>`, id)
	fmt.Fprintf(&b, `<text x="382" y="220" text-anchor="middle" fill="#8a8f98" font-size="32" font-family="sans-serif">%s</text>`,
		html.EscapeString(giftStatusLabel(status.Status)))
	fmt.Fprintf(&b, `<text x="382" y="290" text-anchor="middle" fill="#8a8f98" font-size="28" font-family="sans-serif">已领 %d / %d 份</text>`,
		status.ClaimedSlots, status.TotalSlots)
	b.WriteString(`</svg>`)

	c.Header("Cache-Control", "public, max-age=15")
	c.Data(http.StatusOK, "image/svg+xml", []byte(b.String()))
}

// frameTxError 按 frame 交易协议返回 {message} 错误体
func frameTxError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

func claimTxErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, giftlink.ErrGiftNotFound), errors.Is(err, chain.ErrGiftNotFound):
		return http.StatusNotFound, "gift not found"
	case errors.Is(err, giftlink.ErrExpired):
		return http.StatusBadRequest, "gift expired"
	case errors.Is(err, giftlink.ErrExhausted):
		return http.StatusBadRequest, "all slots claimed"
	case errors.Is(err, giftlink.ErrBadSecret):
		return http.StatusBadRequest, "wrong secret"
	case errors.Is(err, giftlink.ErrUnverifiedActor):
		return http.StatusBadRequest, "no verified address"
	case errors.Is(err, giftlink.ErrDegenerateSplit):
		return http.StatusBadRequest, "gift not splittable"
	case errors.Is(err, giftlink.ErrInvalidParameters):
		return http.StatusBadRequest, "missing secret"
	default:
		return http.StatusInternalServerError, "claim failed"
	}
}

// buildGiftFrame 构建礼包入口 frame
func (h *Handler) buildGiftFrame(id uint64, status string) string {
	base := strings.TrimRight(h.Config.Frame.PublicURL, "/")
	frameURL := fmt.Sprintf("%s/api/frame/%d", base, id)
	imageURL := fmt.Sprintf("%s/api/frame/%d/image?status=%s", base, id, html.EscapeString(status))
	shareURL := fmt.Sprintf("https://warpcast.com/~/compose?embeds[]=%s", frameURL)

	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head>\n")
	b.WriteString(`<meta property="fc:frame" content="vNext"/>` + "\n")
	writeMeta(&b, "fc:frame:image", imageURL)
	writeMeta(&b, "fc:frame:post_url", frameURL)
	writeMeta(&b, "fc:frame:input:text", "输入领取口令")
	writeMeta(&b, "fc:frame:button:1", "🎁 领取")
	writeMeta(&b, "fc:frame:button:1:action", "tx")
	writeMeta(&b, "fc:frame:button:1:target", frameURL+"/tx")
	writeMeta(&b, "fc:frame:button:1:post_url", frameURL)
	writeMeta(&b, "fc:frame:button:2", "查看状态")
	writeMeta(&b, "fc:frame:button:3", "分享")
	writeMeta(&b, "fc:frame:button:3:action", "link")
	writeMeta(&b, "fc:frame:button:3:target", shareURL)
	writeMeta(&b, "og:title", "GiftLink")
	writeMeta(&b, "og:image", imageURL)
	b.WriteString("</head><body>GiftLink</body></html>")
	return b.String()
}

// buildStatusFrame 构建状态展示 frame
func (h *Handler) buildStatusFrame(id uint64, status *cache.GiftStatusSnapshot) string {
	base := strings.TrimRight(h.Config.Frame.PublicURL, "/")
	frameURL := fmt.Sprintf("%s/api/frame/%d", base, id)
	imageURL := fmt.Sprintf("%s/api/frame/%d/image?status=%s&claimed=%d&total=%d",
		base, id, html.EscapeString(status.Status), status.ClaimedSlots, status.TotalSlots)

	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head>\n")
	b.WriteString(`<meta property="fc:frame" content="vNext"/>` + "\n")
	writeMeta(&b, "fc:frame:image", imageURL)
	writeMeta(&b, "fc:frame:post_url", frameURL)
	writeMeta(&b, "fc:frame:button:1", "返回")
	writeMeta(&b, "og:title", fmt.Sprintf("GiftLink #%d · %s", id, giftStatusLabel(status.Status)))
	writeMeta(&b, "og:image", imageURL)
	b.WriteString("</head><body>")
	fmt.Fprintf(&b, "GiftLink #%d：%s，已领 %d/%d", id, giftStatusLabel(status.Status), status.ClaimedSlots, status.TotalSlots)
	b.WriteString("</body></html>")
	return b.String()
}

func writeMeta(b *strings.Builder, property, content string) {
	fmt.Fprintf(b, `<meta property="%s" content="%s"/>`+"\n",
		html.EscapeString(property), html.EscapeString(content))
}

// giftStatusLabel 状态展示文案
func giftStatusLabel(status string) string {
	switch status {
	case models.GiftStatusAvailable:
		return "可领取"
	case models.GiftStatusExhausted:
		return "已领完"
	case models.GiftStatusExpired:
		return "已过期"
	case models.GiftStatusRefunded:
		return "已退款"
	default:
		return status
	}
}
