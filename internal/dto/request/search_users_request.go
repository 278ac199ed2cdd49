package request

// SearchUsersRequest 按用户名前缀搜索用户请求
type SearchUsersRequest struct {
	Username string `form:"username" binding:"required"`
}
