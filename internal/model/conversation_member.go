// Package model 定义数据库实体模型
// 本文件定义会话成员模型，即 (会话, 用户) 关系表
package model

import "gorm.io/gorm"

// ConversationMember 会话成员模型
// 对应数据库 conversation_member 表，每个 (会话, 成员) 一行
// 单聊恰好两行，与 PairKey 中编码的两个 uuid 一致
type ConversationMember struct {
	gorm.Model

	// ConversationUuid 会话 uuid
	ConversationUuid string `gorm:"column:conversation_uuid;index;type:char(24);not null;uniqueIndex:idx_conv_user,priority:1;comment:会话uuid"`

	// UserUuid 成员用户 uuid
	UserUuid string `gorm:"column:user_uuid;index;type:char(24);not null;uniqueIndex:idx_conv_user,priority:2;comment:成员uuid"`
}

// TableName 指定表名
func (ConversationMember) TableName() string {
	return "conversation_member"
}
