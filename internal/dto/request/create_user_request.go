package request

// CreateUserRequest 注册请求
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=1,max=32"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required,min=1"`
}
