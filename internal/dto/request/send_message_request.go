package request

// SendMessageRequest 发送消息请求
type SendMessageRequest struct {
	ConversationId string `json:"conversationId" binding:"required"`
	SenderId       string `json:"senderId" binding:"required"`
	Content        string `json:"content" binding:"required"`
}
