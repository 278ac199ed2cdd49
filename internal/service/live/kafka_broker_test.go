package live

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// nopDispatcher 测试用空派发器
type nopDispatcher struct{}

func (nopDispatcher) Dispatch(ev CommitEvent) {}

// writeTestConfig 在临时目录生成配置并切换工作目录，
// 让 NewKafkaBroker 内部的配置加载命中它
func writeTestConfig(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "configs"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := `[mainConfig]
appName = "lynk_chat_server"
host = "0.0.0.0"
port = 8000

[kafkaConfig]
commitMode = "kafka"
hostPort = "localhost:9092"
commitTopic = "lynk_chat_commits"
partition = 0
timeout = 10000000000
`
	if err := os.WriteFile(filepath.Join(dir, "configs", "config.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(cwd) })
}

func TestKafkaBrokerGroupIDUniquePerProcess(t *testing.T) {
	writeTestConfig(t)

	// 两个节点必须落在不同的消费组里：同组会让 Kafka 把提交事件
	// 分摊给组员，另一个节点的订阅就永远收不到失效通知
	b1 := NewKafkaBroker(nopDispatcher{})
	t.Cleanup(b1.Close)
	b2 := NewKafkaBroker(nopDispatcher{})
	t.Cleanup(b2.Close)

	g1 := b1.consumer.Config().GroupID
	g2 := b2.consumer.Config().GroupID
	if !strings.HasPrefix(g1, "live_lynk_chat_server_") {
		t.Fatalf("GroupID 前缀不对：%s", g1)
	}
	if g1 == g2 {
		t.Fatalf("两个消费者不应共用 GroupID：%s", g1)
	}
}
