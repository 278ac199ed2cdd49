package respond

// MessageRespond 单条消息响应
// Id 是雪花 int64 的字符串形式，避免 JavaScript 精度丢失
type MessageRespond struct {
	Id             string `json:"id"`
	ConversationId string `json:"conversationId"`
	SenderId       string `json:"senderId"`
	Content        string `json:"content"`
	CreatedAt      int64  `json:"createdAt"` // 毫秒时间戳
}
