package request

// GetConversationRequest 按 id 查询单个会话请求
type GetConversationRequest struct {
	ConversationId string `form:"conversationId" binding:"required"`
}
