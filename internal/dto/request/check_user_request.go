package request

// CheckUserRequest 登录/用户名可用性检查请求
// Action 为 "signup" 时只做用户名可用性检查，Password 可省略
type CheckUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password"`
	Action   string `json:"action"`
}
