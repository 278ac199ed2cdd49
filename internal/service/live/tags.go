// Package live 实现实时查询订阅引擎
// tags.go
// 核心职责：失效标签的命名约定
// 查询执行时记录读到的标签（读集），mutation 提交时宣告写到的标签（写集），
// 两者在同一套命名下求交集
package live

// MessagesTag 某个会话的消息集合
func MessagesTag(conversationId string) string {
	return "messages:" + conversationId
}

// ConversationsTag 某个用户可见的会话集合
func ConversationsTag(userId string) string {
	return "conversations:" + userId
}

// MembersTag 某个会话的成员集合
func MembersTag(conversationId string) string {
	return "members:" + conversationId
}
