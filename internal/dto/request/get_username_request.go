package request

// GetUsernameRequest 按用户 id 查询用户名请求
type GetUsernameRequest struct {
	UserId string `form:"userId" binding:"required"`
}
