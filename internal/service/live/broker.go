// Package live 实现实时查询订阅引擎
// broker.go
// 核心职责：定义提交事件与提交事件代理接口
// 变更写入数据库后，以 CommitEvent 的形式广播给订阅引擎；
// 代理抽象了广播通道，支持 Kafka 和 Channel 两种实现
package live

import "context"

// CommitEvent 一次写事务提交后的失效事件
// Tags 是本次写入触碰到的失效标签（写集），
// 引擎用它和各订阅的读集求交集决定重算哪些订阅
type CommitEvent struct {
	// Seq 提交序号（雪花 ID），单节点内随提交顺序单调递增
	Seq int64 `json:"seq"`
	// Tags 写集标签，如 "messages:C123"、"conversations:U456"
	Tags []string `json:"tags"`
}

// Dispatcher 提交事件的消费端
// 由 Engine 实现；代理的消费循环把事件交给它
type Dispatcher interface {
	Dispatch(ev CommitEvent)
}

// CommitBroker 提交事件代理接口
// 支持多种实现：KafkaBroker (分布式)、ChannelBroker (单机)
type CommitBroker interface {
	// Publish 发布提交事件
	Publish(ctx context.Context, ev CommitEvent) error
	// Start 启动消费循环，把事件按序交给 Dispatcher
	Start()
	// Close 关闭代理资源
	Close()
}

// Committer 写路径对订阅引擎的最小依赖
// Service 层的各个 mutation 在事务提交后调用 Commit 宣告写集
type Committer interface {
	Commit(ctx context.Context, tags ...string)
}
