package public

import "github.com/giftlink-next/internal/provider"

// Handler 公开接口处理器入口
// 说明：该处理器用于 frame 交互与礼包公开 API。
type Handler struct {
	*provider.Container
}

// New 创建公开处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
