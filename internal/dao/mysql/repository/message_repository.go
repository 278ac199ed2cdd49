package repository

import (
	"lynk_chat_server/internal/model"

	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建消息 Repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create 追加一条消息
func (r *messageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return wrapDBError(err, "创建消息")
	}
	return nil
}

// FindRecentByConversation 返回会话最近 limit 条消息
// 先按 (sent_at, uuid) 降序取最后 limit 条，再反转为升序返回，
// 这样既是"最近的一页"，渲染时又是自然的时间顺序
func (r *messageRepository) FindRecentByConversation(conversationUuid string, limit int) ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.Where("conversation_uuid = ?", conversationUuid).
		Order("sent_at DESC, uuid DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询消息 conversation=%s", conversationUuid)
	}
	// 反转为 (sent_at, uuid) 升序
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
