// Package router 提供 HTTP 路由注册
// 本文件定义订阅网关相关的路由
package router

import (
	"github.com/gin-gonic/gin"

	"lynk_chat_server/internal/handler"
)

// RegisterWebSocketRoutes 注册订阅网关相关路由
func RegisterWebSocketRoutes(r *gin.Engine, h *handler.Handlers) {
	wsGroup := r.Group("/ws")
	{
		// GET /ws/subscribe - 升级为 WebSocket，承载实时查询订阅
		wsGroup.GET("/subscribe", h.Ws.Subscribe)
	}
}
