// Package model 定义数据库实体模型
// 本文件定义会话模型，单聊和群聊共用一张表
package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// Conversation 会话模型
// 对应数据库 conversation 表
// IsGroup 为 false 时是单聊，必须带 PairKey；为 true 时是群聊，必须带 Name
type Conversation struct {
	gorm.Model

	// Uuid 会话唯一标识
	// 格式：C + 雪花 ID
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(24);comment:会话唯一id"`

	// IsGroup 是否群聊
	IsGroup bool `gorm:"column:is_group;not null;comment:是否群聊"`

	// Name 群聊名称
	// 仅群聊使用；名称不是唯一键，允许重名群
	Name string `gorm:"column:name;type:varchar(64);comment:群聊名称"`

	// PairKey 单聊去重键
	// 两个成员 uuid 排序后用 ':' 拼接；唯一索引保证同一对用户
	// 至多存在一个单聊会话。群聊不设置该字段，NULL 不参与唯一约束
	PairKey sql.NullString `gorm:"column:pair_key;uniqueIndex;type:varchar(64);comment:单聊去重键"`
}

// TableName 指定表名
func (Conversation) TableName() string {
	return "conversation"
}
