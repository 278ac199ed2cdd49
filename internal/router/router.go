// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"github.com/gin-gonic/gin"

	"lynk_chat_server/internal/handler"
)

// RegisterRoutes 注册所有路由
// 在 http_server.Init() 中调用
func RegisterRoutes(r *gin.Engine, h *handler.Handlers) {
	RegisterAuthRoutes(r, h)         // 认证路由
	RegisterConversationRoutes(r, h) // 会话与消息路由
	RegisterCreateChatRoutes(r, h)   // 发起聊天路由
	RegisterWebSocketRoutes(r, h)    // 订阅网关路由
}
