// Package live 实现实时查询订阅引擎
// channel_broker.go
// 核心职责：单机模式下的提交事件代理
// 事件经进程内缓冲通道直达本机引擎，不依赖外部消息队列
package live

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"lynk_chat_server/pkg/constants"
)

// ChannelBroker 进程内提交事件代理
type ChannelBroker struct {
	dispatcher Dispatcher
	transmit   chan CommitEvent
	done       chan struct{}
	closeOnce  sync.Once
}

// NewChannelBroker 创建 ChannelBroker 实例
func NewChannelBroker(dispatcher Dispatcher) *ChannelBroker {
	return &ChannelBroker{
		dispatcher: dispatcher,
		transmit:   make(chan CommitEvent, constants.SUBSCRIPTION_QUEUE),
		done:       make(chan struct{}),
	}
}

// Publish 实现 CommitBroker 接口：把事件放入进程内通道
// 通道是有序的，消费循环按放入顺序交给引擎，保证推送按提交顺序到达
func (b *ChannelBroker) Publish(ctx context.Context, ev CommitEvent) error {
	select {
	case b.transmit <- ev:
		return nil
	case <-b.done:
		return context.Canceled
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start 启动消费循环
func (b *ChannelBroker) Start() {
	zap.L().Info("channel commit broker started")
	for {
		select {
		case ev := <-b.transmit:
			b.dispatcher.Dispatch(ev)
		case <-b.done:
			return
		}
	}
}

// Close 关闭代理
func (b *ChannelBroker) Close() {
	b.closeOnce.Do(func() {
		close(b.done)
	})
}
