// Package handler 提供 HTTP 请求处理器
// 本文件定义 Handler 聚合结构和构造函数
package handler

import (
	"lynk_chat_server/internal/service"
	"lynk_chat_server/internal/service/live"
)

// Handlers 聚合所有 Handler 实例
// 作为依赖注入的入口，Router 层通过此结构访问各个 Handler
type Handlers struct {
	Auth         *AuthHandler
	Conversation *ConversationHandler
	CreateChat   *CreateChatHandler
	Ws           *WsHandler
}

// NewHandlers 创建并注入所有 Handler 实例
func NewHandlers(svc *service.Services, engine *live.Engine) *Handlers {
	return &Handlers{
		Auth:         NewAuthHandler(svc.Auth),
		Conversation: NewConversationHandler(svc.Conversation, svc.Message),
		CreateChat:   NewCreateChatHandler(svc.Conversation),
		Ws:           NewWsHandler(engine),
	}
}
