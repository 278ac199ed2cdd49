package request

// CreateDirectConversationRequest 创建单聊会话请求
// 幂等：同一对用户重复创建返回同一个会话 id
type CreateDirectConversationRequest struct {
	UserId1 string `json:"userId1" binding:"required"`
	UserId2 string `json:"userId2" binding:"required,nefield=UserId1"`
}
