package respond

// SearchUserRespond 用户搜索结果响应
type SearchUserRespond struct {
	UserId   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}
