package request

// GetMessageListRequest 拉取最近消息请求
// ConversationId 为空时返回空列表，前端用它表示"未选中会话"
type GetMessageListRequest struct {
	ConversationId string `form:"conversationId"`
}
