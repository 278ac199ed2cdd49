// Package model 定义数据库实体模型
// 本文件定义消息模型，消息只追加，不修改不删除
package model

import "gorm.io/gorm"

// Message 消息模型
// 对应数据库 message 表
type Message struct {
	gorm.Model

	// Uuid 消息唯一标识
	// 雪花算法生成的 int64；同节点内单调递增，
	// 作为 created_at 同毫秒写入时的排序平局裁决
	Uuid int64 `gorm:"column:uuid;uniqueIndex;type:bigint;not null;comment:消息雪花ID"`

	// ConversationUuid 所属会话 uuid
	// 和 created_at 组成复合索引，支撑"最近 N 条"查询
	ConversationUuid string `gorm:"column:conversation_uuid;type:char(24);not null;index:idx_conv_created,priority:1;comment:会话uuid"`

	// SenderUuid 发送者 uuid
	// 写入前必须通过会话成员校验
	SenderUuid string `gorm:"column:sender_uuid;index;type:char(24);not null;comment:发送者uuid"`

	// Content 消息文本内容
	Content string `gorm:"column:content;type:TEXT;comment:消息内容"`

	// SentAt 消息落库时间（毫秒时间戳）
	// gorm.Model 的 CreatedAt 精度受驱动配置影响，排序不依赖它
	SentAt int64 `gorm:"column:sent_at;not null;index:idx_conv_created,priority:2;comment:发送时间(毫秒时间戳)"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "message"
}
