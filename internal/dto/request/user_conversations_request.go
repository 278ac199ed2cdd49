package request

// UserConversationsRequest 查询用户会话列表请求
type UserConversationsRequest struct {
	UserId string `form:"userId" binding:"required"`
}
