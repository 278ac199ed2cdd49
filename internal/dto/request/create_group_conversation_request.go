package request

// CreateGroupConversationRequest 创建群聊会话请求
// MemberIds 为创建者勾选的成员；创建者自己由服务端补齐
type CreateGroupConversationRequest struct {
	Name      string   `json:"name" binding:"required"`
	CreatorId string   `json:"creatorId" binding:"required"`
	MemberIds []string `json:"memberIds" binding:"required,min=1"`
}
