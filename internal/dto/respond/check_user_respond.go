package respond

// CheckUserRespond 登录/用户名可用性检查响应
// Success/Message/UserId/Email 的形态与旧前端约定一致
// Token 是新增字段，WebSocket 订阅握手时使用
type CheckUserRespond struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserId  string `json:"userId,omitempty"`
	Email   string `json:"email,omitempty"`
	Token   string `json:"token,omitempty"`
}
