// Package router 提供 HTTP 路由注册
// 本文件定义会话与消息相关的路由
package router

import (
	"github.com/gin-gonic/gin"

	"lynk_chat_server/internal/handler"
)

// RegisterConversationRoutes 注册会话与消息相关路由
func RegisterConversationRoutes(r *gin.Engine, h *handler.Handlers) {
	conversationGroup := r.Group("/conversation")
	{
		// GET /conversation/queryUserConversations - 查询用户的会话列表
		conversationGroup.GET("/queryUserConversations", h.Conversation.QueryUserConversations)
		// GET /conversation/getConversationWithId - 按 id 查询单个会话
		conversationGroup.GET("/getConversationWithId", h.Conversation.GetConversationWithId)
		// GET /conversation/getUsernameById - 按用户 id 查用户名
		conversationGroup.GET("/getUsernameById", h.Conversation.GetUsernameById)
		// GET /conversation/getMsgsInConversation - 拉取会话最近一页消息
		conversationGroup.GET("/getMsgsInConversation", h.Conversation.GetMsgsInConversation)
		// POST /conversation/sendMsgToConversation - 发送消息
		conversationGroup.POST("/sendMsgToConversation", h.Conversation.SendMsgToConversation)
	}
}
