package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/giftlink-next/internal/http/handlers/shared"
	"github.com/giftlink-next/internal/http/response"
	"github.com/giftlink-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetAdminGifts 获取礼包列表 (Admin)
func (h *Handler) GetAdminGifts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	filter := repository.GiftListFilter{
		Sender:    strings.TrimSpace(c.Query("sender")),
		Status:    strings.TrimSpace(c.Query("status")),
		SplitMode: strings.TrimSpace(c.Query("split_mode")),
		Page:      page,
		PageSize:  pageSize,
	}

	gifts, total, err := h.GiftService.ListGifts(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "gift list failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, gifts, pagination)
}

// GetAdminGiftClaims 获取礼包领取记录 (Admin)
func (h *Handler) GetAdminGiftClaims(c *gin.Context) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid gift id", nil)
		return
	}

	claims, err := h.GiftService.ListClaims(id)
	if err != nil {
		respondError(c, response.CodeInternal, "claim list failed", err)
		return
	}
	response.Success(c, claims)
}

// GetAdminStats 获取礼包统计 (Admin)
func (h *Handler) GetAdminStats(c *gin.Context) {
	stats, err := h.GiftService.Stats()
	if err != nil {
		respondError(c, response.CodeInternal, "stats failed", err)
		return
	}
	response.Success(c, stats)
}
