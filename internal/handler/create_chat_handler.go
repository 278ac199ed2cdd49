// Package handler 提供 HTTP 请求处理器
// 本文件处理发起聊天（建会话、找人）相关的 API 请求
package handler

import (
	"lynk_chat_server/internal/dto/request"
	"lynk_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateChatHandler 发起聊天请求处理器
type CreateChatHandler struct {
	conversationService service.ConversationService
}

// NewCreateChatHandler 构造函数，注入 ConversationService 依赖
func NewCreateChatHandler(conversationService service.ConversationService) *CreateChatHandler {
	return &CreateChatHandler{conversationService: conversationService}
}

// GetUsersByUsername 按用户名前缀搜索用户
// GET /createChat/getUsersByUsername?username=xxx
// 响应: []respond.SearchUserRespond（最多 20 条）
func (h *CreateChatHandler) GetUsersByUsername(c *gin.Context) {
	var req request.SearchUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	list, err := h.conversationService.SearchUsersByUsername(req.Username)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, list)
}

// Create1on1Conversation 创建单聊
// POST /createChat/create1on1Conversation
// 请求体: request.CreateDirectConversationRequest
// 响应: { conversationId: string }
// 幂等：同一对用户重复创建返回同一个会话 id
func (h *CreateChatHandler) Create1on1Conversation(c *gin.Context) {
	var req request.CreateDirectConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	conversationId, err := h.conversationService.CreateDirectConversation(req.UserId1, req.UserId2)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"conversationId": conversationId})
}

// CreateGroupConversation 创建群聊
// POST /createChat/createGroupConversation
// 请求体: request.CreateGroupConversationRequest
// 响应: { conversationId: string }
func (h *CreateChatHandler) CreateGroupConversation(c *gin.Context) {
	var req request.CreateGroupConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	conversationId, err := h.conversationService.CreateGroupConversation(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"conversationId": conversationId})
}
