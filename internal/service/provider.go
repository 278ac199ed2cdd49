// provider.go
// Service 层的聚合与装配入口
package service

import (
	"lynk_chat_server/internal/dao/mysql/repository"
	myredis "lynk_chat_server/internal/dao/redis"
	"lynk_chat_server/internal/service/auth"
	"lynk_chat_server/internal/service/conversation"
	"lynk_chat_server/internal/service/live"
	"lynk_chat_server/internal/service/message"
)

// Services 聚合所有 Service 实例
// 作为依赖注入的入口，Handler 层通过此结构访问业务层
type Services struct {
	Auth         AuthService
	Conversation ConversationService
	Message      MessageService
}

// NewServices 创建 Service 聚合实例
func NewServices(repos *repository.Repositories, cache myredis.AsyncCacheService, committer live.Committer) *Services {
	return &Services{
		Auth:         auth.NewAuthService(repos),
		Conversation: conversation.NewConversationService(repos, committer),
		Message:      message.NewMessageService(repos, cache, committer),
	}
}
