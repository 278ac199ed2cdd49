package repository

import (
	"lynk_chat_server/internal/model"

	"gorm.io/gorm"
)

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository 创建会话 Repository
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// FindByUuid 按 uuid 查找会话
func (r *conversationRepository) FindByUuid(uuid string) (*model.Conversation, error) {
	var conv model.Conversation
	if err := r.db.First(&conv, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询会话 uuid=%s", uuid)
	}
	return &conv, nil
}

// FindByPairKey 按单聊去重键查找会话
func (r *conversationRepository) FindByPairKey(pairKey string) (*model.Conversation, error) {
	var conv model.Conversation
	if err := r.db.First(&conv, "pair_key = ?", pairKey).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询会话 pairKey=%s", pairKey)
	}
	return &conv, nil
}

// FindByUuids 按 uuid 列表批量查找
func (r *conversationRepository) FindByUuids(uuids []string) ([]model.Conversation, error) {
	if len(uuids) == 0 {
		return nil, nil
	}
	var convs []model.Conversation
	if err := r.db.Where("uuid IN ?", uuids).Find(&convs).Error; err != nil {
		return nil, wrapDBError(err, "批量查询会话")
	}
	return convs, nil
}

// CreateDirect 原子化的单聊"不存在则创建"
// 先查一次让常见路径（会话已存在）不开事务；未命中时在事务里
// 插入会话和两行成员。并发双方同时创建时，pair_key 唯一索引让
// 其中一方的插入失败，此时回滚改读胜者，两边拿到同一个会话
func (r *conversationRepository) CreateDirect(conv *model.Conversation, memberUuids [2]string) (*model.Conversation, bool, error) {
	if existing, err := r.FindByPairKey(conv.PairKey.String); err == nil {
		return existing, false, nil
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return err
		}
		members := []model.ConversationMember{
			{ConversationUuid: conv.Uuid, UserUuid: memberUuids[0]},
			{ConversationUuid: conv.Uuid, UserUuid: memberUuids[1]},
		}
		return tx.Create(&members).Error
	})
	if err == nil {
		return conv, true, nil
	}
	if isDuplicateKey(err) {
		// 并发创建输掉了，改读胜者
		existing, ferr := r.FindByPairKey(conv.PairKey.String)
		if ferr != nil {
			return nil, false, ferr
		}
		return existing, false, nil
	}
	return nil, false, wrapDBErrorf(err, "创建单聊会话 pairKey=%s", conv.PairKey.String)
}

// CreateGroup 在一个事务里插入群聊会话和所有成员行
func (r *conversationRepository) CreateGroup(conv *model.Conversation, memberUuids []string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return err
		}
		members := make([]model.ConversationMember, 0, len(memberUuids))
		for _, userUuid := range memberUuids {
			members = append(members, model.ConversationMember{
				ConversationUuid: conv.Uuid,
				UserUuid:         userUuid,
			})
		}
		return tx.Create(&members).Error
	})
	if err != nil {
		return wrapDBErrorf(err, "创建群聊会话 name=%s", conv.Name)
	}
	return nil
}
