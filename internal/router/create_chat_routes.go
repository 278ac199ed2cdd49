// Package router 提供 HTTP 路由注册
// 本文件定义发起聊天相关的路由
package router

import (
	"github.com/gin-gonic/gin"

	"lynk_chat_server/internal/handler"
)

// RegisterCreateChatRoutes 注册发起聊天相关路由
func RegisterCreateChatRoutes(r *gin.Engine, h *handler.Handlers) {
	createChatGroup := r.Group("/createChat")
	{
		// GET /createChat/getUsersByUsername - 按用户名前缀搜索用户
		createChatGroup.GET("/getUsersByUsername", h.CreateChat.GetUsersByUsername)
		// POST /createChat/create1on1Conversation - 创建单聊
		createChatGroup.POST("/create1on1Conversation", h.CreateChat.Create1on1Conversation)
		// POST /createChat/createGroupConversation - 创建群聊
		createChatGroup.POST("/createGroupConversation", h.CreateChat.CreateGroupConversation)
	}
}
