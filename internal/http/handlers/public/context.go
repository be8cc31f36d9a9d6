package public

import (
	"strconv"
	"strings"

	handlershared "github.com/giftlink-next/internal/http/handlers/shared"
	"github.com/giftlink-next/internal/http/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

// parseChainGiftID 解析路径中的礼包编号
func parseChainGiftID(c *gin.Context) (uint64, bool) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid gift id", nil)
		return 0, false
	}
	return id, true
}
