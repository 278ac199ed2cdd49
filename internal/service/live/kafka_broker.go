// Package live 实现实时查询订阅引擎
// kafka_broker.go
// 核心职责：分布式模式下的提交事件代理
// 1. 把提交事件写入 Kafka 主题
// 2. 消费全量提交事件并交给本机引擎
// 3. 多节点部署时，任一节点的写入都会失效所有节点上的相关订阅
package live

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	myconfig "lynk_chat_server/internal/config"
)

// KafkaBroker 基于 Kafka 的提交事件代理
type KafkaBroker struct {
	dispatcher Dispatcher
	producer   *kafka.Writer
	consumer   *kafka.Reader
	done       chan struct{}
	closeOnce  sync.Once
}

// NewKafkaBroker 创建并初始化 KafkaBroker 实例
func NewKafkaBroker(dispatcher Dispatcher) *KafkaBroker {
	kafkaConfig := myconfig.GetConfig().KafkaConfig
	return &KafkaBroker{
		dispatcher: dispatcher,
		producer: &kafka.Writer{
			Addr:  kafka.TCP(kafkaConfig.HostPort),
			Topic: kafkaConfig.CommitTopic,
			// 单分区 + Hash Balancer，保证提交事件的全局顺序
			Balancer:               &kafka.Hash{},
			WriteTimeout:           kafkaConfig.Timeout,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		consumer: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        []string{kafkaConfig.HostPort},
			Topic:          kafkaConfig.CommitTopic,
			CommitInterval: kafkaConfig.Timeout,
			// 每个进程用独立 GroupID，人人都消费全量事件；
			// 同组的话 Kafka 会把事件分摊给组员，其他节点就收不到了
			GroupID:     "live_" + myconfig.GetConfig().MainConfig.AppName + "_" + uuid.NewString(),
			StartOffset: kafka.LastOffset,
		}),
		done: make(chan struct{}),
	}
}

// Publish 实现 CommitBroker 接口：把事件写入 Kafka
func (b *KafkaBroker) Publish(ctx context.Context, ev CommitEvent) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.producer.WriteMessages(ctx, kafka.Message{
		Key:   []byte("commit"),
		Value: value,
	})
}

// Start 启动消费循环
// 从 Kafka 读取提交事件并按序交给引擎
func (b *KafkaBroker) Start() {
	zap.L().Info("kafka commit broker started")
	for {
		select {
		case <-b.done:
			return
		default:
		}
		msg, err := b.consumer.ReadMessage(context.Background())
		if err != nil {
			select {
			case <-b.done:
				return
			default:
			}
			zap.L().Error("kafka read commit event failed", zap.Error(err))
			continue
		}
		var ev CommitEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			zap.L().Error("kafka commit event unmarshal failed", zap.Error(err))
			continue
		}
		b.dispatcher.Dispatch(ev)
	}
}

// Close 关闭 Kafka 资源
func (b *KafkaBroker) Close() {
	b.closeOnce.Do(func() {
		close(b.done)
		if err := b.producer.Close(); err != nil {
			zap.L().Error(err.Error())
		}
		if err := b.consumer.Close(); err != nil {
			zap.L().Error(err.Error())
		}
	})
}
