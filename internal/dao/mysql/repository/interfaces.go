// Package repository 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
// 所有 Repository 接口在此文件定义，具体实现在各自的文件中
package repository

import (
	"lynk_chat_server/internal/model"

	"gorm.io/gorm"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	// Create 创建用户
	// username 唯一索引冲突时返回 CodeUserExist，调用方不需要也不应该预查重
	Create(user *model.User) error
	// FindByUuid 按 uuid 查找用户
	FindByUuid(uuid string) (*model.User, error)
	// FindByUsername 按用户名精确查找，未找到返回 CodeNotFound
	FindByUsername(username string) (*model.User, error)
	// FindByUuids 按 uuid 列表批量查找
	FindByUuids(uuids []string) ([]model.User, error)
	// SearchByUsernamePrefix 按用户名前缀搜索，最多返回 limit 条
	SearchByUsernamePrefix(prefix string, limit int) ([]model.User, error)
}

// ConversationRepository 会话数据访问接口
type ConversationRepository interface {
	// FindByUuid 按 uuid 查找会话
	FindByUuid(uuid string) (*model.Conversation, error)
	// FindByPairKey 按单聊去重键查找会话
	FindByPairKey(pairKey string) (*model.Conversation, error)
	// FindByUuids 按 uuid 列表批量查找（一次往返，避免 N+1）
	FindByUuids(uuids []string) ([]model.Conversation, error)
	// CreateDirect 原子化的单聊"不存在则创建"
	// 在一个事务里插入会话和两行成员；pair_key 冲突时回滚并改读胜者，
	// 并发双方创建同一单聊时最终收敛到同一个会话
	// 返回最终会话和本次调用是否真正新建
	CreateDirect(conv *model.Conversation, memberUuids [2]string) (*model.Conversation, bool, error)
	// CreateGroup 在一个事务里插入群聊会话和所有成员行
	CreateGroup(conv *model.Conversation, memberUuids []string) error
}

// MemberRepository 会话成员数据访问接口
type MemberRepository interface {
	// FindByUserUuid 查询用户参与的全部成员行
	FindByUserUuid(userUuid string) ([]model.ConversationMember, error)
	// FindByConversationUuid 查询会话的全部成员行
	FindByConversationUuid(conversationUuid string) ([]model.ConversationMember, error)
	// IsMember 判断用户是否是会话成员
	IsMember(conversationUuid, userUuid string) (bool, error)
}

// MessageRepository 消息数据访问接口
type MessageRepository interface {
	// Create 追加一条消息
	Create(message *model.Message) error
	// FindRecentByConversation 返回会话最近 limit 条消息
	// 结果按 (sent_at, uuid) 升序，渲染顺序稳定
	FindRecentByConversation(conversationUuid string, limit int) ([]model.Message, error)
}

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	User         UserRepository
	Conversation ConversationRepository
	Member       MemberRepository
	Message      MessageRepository
}

// NewRepositories 创建 Repository 聚合实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Conversation: NewConversationRepository(db),
		Member:       NewMemberRepository(db),
		Message:      NewMessageRepository(db),
	}
}
