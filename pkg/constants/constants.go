package constants

const (
	CHANNEL_SIZE       = 100 // 通道大小
	MESSAGE_PAGE_SIZE  = 50  // 单次拉取的最近消息条数
	USER_SEARCH_LIMIT  = 20  // 用户搜索结果上限
	REDIS_TIMEOUT      = 1   // redis timeout (分钟)
	SUBSCRIPTION_QUEUE = 256 // 订阅引擎提交事件队列大小
)
