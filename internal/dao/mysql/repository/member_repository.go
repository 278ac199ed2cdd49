package repository

import (
	"lynk_chat_server/internal/model"

	"gorm.io/gorm"
)

type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository 创建会话成员 Repository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

// FindByUserUuid 查询用户参与的全部成员行
func (r *memberRepository) FindByUserUuid(userUuid string) ([]model.ConversationMember, error) {
	var members []model.ConversationMember
	if err := r.db.Where("user_uuid = ?", userUuid).Find(&members).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户会话成员关系 user=%s", userUuid)
	}
	return members, nil
}

// FindByConversationUuid 查询会话的全部成员行
func (r *memberRepository) FindByConversationUuid(conversationUuid string) ([]model.ConversationMember, error) {
	var members []model.ConversationMember
	if err := r.db.Where("conversation_uuid = ?", conversationUuid).Find(&members).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询会话成员 conversation=%s", conversationUuid)
	}
	return members, nil
}

// IsMember 判断用户是否是会话成员
func (r *memberRepository) IsMember(conversationUuid, userUuid string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.ConversationMember{}).
		Where("conversation_uuid = ? AND user_uuid = ?", conversationUuid, userUuid).
		Count(&count).Error; err != nil {
		return false, wrapDBErrorf(err, "查询成员关系 conversation=%s user=%s", conversationUuid, userUuid)
	}
	return count > 0, nil
}
