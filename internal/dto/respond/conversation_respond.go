package respond

// ConversationRespond 会话响应
// 单聊的 Name 是站在查询者视角解析出的对方用户名
type ConversationRespond struct {
	Id      string `json:"id"`
	IsGroup bool   `json:"isGroup"`
	Name    string `json:"name"`
	PairKey string `json:"pairKey,omitempty"`
}
