package public

import (
	"strings"

	"github.com/giftlink-next/internal/http/response"
	"github.com/giftlink-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ComputeClaimHashRequest 口令承诺计算请求
type ComputeClaimHashRequest struct {
	Secret   string  `json:"secret" binding:"required"`
	ActorFID *uint64 `json:"actor_fid"`
}

// ComputeClaimHash 计算口令承诺
// 创建礼包前调用，返回写入合约的 claimHash。
func (h *Handler) ComputeClaimHash(c *gin.Context) {
	var req ComputeClaimHashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	hash, err := h.GiftService.ComputeClaimHash(service.ComputeClaimHashInput{
		Secret:   req.Secret,
		ActorFID: req.ActorFID,
	})
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid secret", nil)
		return
	}
	response.Success(c, gin.H{"claim_hash": hash})
}

// RegisterGiftRequest 礼包登记请求
type RegisterGiftRequest struct {
	ChainGiftID uint64  `json:"chain_gift_id" binding:"required"`
	SenderFID   *uint64 `json:"sender_fid"`
}

// RegisterGift 登记链上已创建的礼包
func (h *Handler) RegisterGift(c *gin.Context) {
	var req RegisterGiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	gift, err := h.GiftService.RegisterGift(c.Request.Context(), service.RegisterGiftInput{
		ChainGiftID: req.ChainGiftID,
		SenderFID:   req.SenderFID,
	})
	if err != nil {
		rules := concatMappedHandlerErrors(registerErrorRules, giftLookupErrorRules)
		respondWithMappedError(c, err, rules, response.CodeInternal, "gift register failed")
		return
	}
	response.Success(c, gift)
}

// GetGiftStatus 查询礼包状态
func (h *Handler) GetGiftStatus(c *gin.Context) {
	id, ok := parseChainGiftID(c)
	if !ok {
		return
	}
	status, err := h.GiftService.GetStatus(c.Request.Context(), id)
	if err != nil {
		respondWithMappedError(c, err, giftLookupErrorRules, response.CodeInternal, "gift status failed")
		return
	}
	response.Success(c, status)
}

// RefundRequest 退款授权请求
type RefundRequest struct {
	Caller string `json:"caller" binding:"required"`
}

// AuthorizeRefund 过期退款授权
// 校验通过时返回可提交的 refund 交易请求。
func (h *Handler) AuthorizeRefund(c *gin.Context) {
	id, ok := parseChainGiftID(c)
	if !ok {
		return
	}
	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	caller := strings.TrimSpace(req.Caller)
	txRequest, err := h.GiftService.AuthorizeRefund(c.Request.Context(), id, caller)
	if err != nil {
		rules := concatMappedHandlerErrors(refundErrorRules, giftLookupErrorRules)
		respondWithMappedError(c, err, rules, response.CodeInternal, "refund authorize failed")
		return
	}
	response.Success(c, txRequest)
}
