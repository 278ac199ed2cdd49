// Package service 定义业务层接口
// 本文件定义所有 Service 接口，供 Handler 层调用
// 接口设计遵循依赖倒置原则，便于测试和解耦
package service

import (
	"lynk_chat_server/internal/dto/request"
	"lynk_chat_server/internal/dto/respond"
	"lynk_chat_server/internal/service/live"
)

// AuthService 认证业务接口
// 处理注册、登录校验、用户名可用性检查
type AuthService interface {
	// CheckUser 登录校验或用户名可用性检查（action="signup"）
	// 登录失败返回 success=false 的响应而不是 error，形态与旧前端约定一致
	CheckUser(req request.CheckUserRequest) (*respond.CheckUserRespond, error)
	// CreateUser 注册用户，返回新用户 uuid
	// 用户名冲突返回 CodeUserExist
	CreateUser(req request.CreateUserRequest) (string, error)
}

// ConversationService 会话业务接口
// 处理会话列表、单聊/群聊创建、用户检索
type ConversationService interface {
	// GetUserConversations 获取用户的会话列表（单聊名称解析为对方用户名）
	GetUserConversations(userId string) ([]respond.ConversationRespond, error)
	// GetConversationWithId 按 id 获取单个会话
	GetConversationWithId(conversationId string) (*respond.ConversationRespond, error)
	// GetUsernameById 按用户 id 查用户名
	GetUsernameById(userId string) (string, error)
	// SearchUsersByUsername 按用户名前缀搜索用户
	SearchUsersByUsername(username string) ([]respond.SearchUserRespond, error)
	// CreateDirectConversation 创建单聊（幂等，同一对用户收敛到同一会话）
	CreateDirectConversation(userId1, userId2 string) (string, error)
	// CreateGroupConversation 创建群聊
	CreateGroupConversation(req request.CreateGroupConversationRequest) (string, error)
	// UserConversationsQuery 会话列表的可订阅查询
	UserConversationsQuery() live.QueryFunc
}

// MessageService 消息业务接口
type MessageService interface {
	// SendMessage 发送消息，发送者必须是会话成员，返回消息 id
	SendMessage(req request.SendMessageRequest) (string, error)
	// GetMessageList 获取会话最近一页消息（conversationId 为空返回空列表）
	GetMessageList(conversationId string) ([]respond.MessageRespond, error)
	// MessagesQuery 消息列表的可订阅查询
	MessagesQuery() live.QueryFunc
}
