// Package handler 提供 HTTP 请求处理器
// 本文件处理会话与消息相关的 API 请求
package handler

import (
	"lynk_chat_server/internal/dto/request"
	"lynk_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// ConversationHandler 会话与消息请求处理器
type ConversationHandler struct {
	conversationService service.ConversationService
	messageService      service.MessageService
}

// NewConversationHandler 构造函数，注入 Service 依赖
func NewConversationHandler(conversationService service.ConversationService, messageService service.MessageService) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
		messageService:      messageService,
	}
}

// QueryUserConversations 查询用户的会话列表
// GET /conversation/queryUserConversations?userId=xxx
// 响应: []respond.ConversationRespond（单聊名称已解析为对方用户名）
func (h *ConversationHandler) QueryUserConversations(c *gin.Context) {
	var req request.UserConversationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	list, err := h.conversationService.GetUserConversations(req.UserId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, list)
}

// GetConversationWithId 按 id 查询单个会话
// GET /conversation/getConversationWithId?conversationId=xxx
// 响应: respond.ConversationRespond
func (h *ConversationHandler) GetConversationWithId(c *gin.Context) {
	var req request.GetConversationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	conv, err := h.conversationService.GetConversationWithId(req.ConversationId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, conv)
}

// GetUsernameById 按用户 id 查用户名
// GET /conversation/getUsernameById?userId=xxx
// 响应: { username: string }
func (h *ConversationHandler) GetUsernameById(c *gin.Context) {
	var req request.GetUsernameRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	username, err := h.conversationService.GetUsernameById(req.UserId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"username": username})
}

// GetMsgsInConversation 拉取会话最近一页消息
// GET /conversation/getMsgsInConversation?conversationId=xxx
// 响应: []respond.MessageRespond（按发送时间升序）
// conversationId 可省略，此时返回空列表
func (h *ConversationHandler) GetMsgsInConversation(c *gin.Context) {
	var req request.GetMessageListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	list, err := h.messageService.GetMessageList(req.ConversationId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, list)
}

// SendMsgToConversation 发送消息
// POST /conversation/sendMsgToConversation
// 请求体: request.SendMessageRequest
// 响应: { messageId: string }
// 发送者不是会话成员返回 CodeNotAMember
func (h *ConversationHandler) SendMsgToConversation(c *gin.Context) {
	var req request.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	messageId, err := h.messageService.SendMessage(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"messageId": messageId})
}
