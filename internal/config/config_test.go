package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// chdir 切到指定目录，测试结束自动切回
func chdir(t *testing.T, dir string) {
	t.Helper()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(cwd) })
}

func TestLoadConfigMissingFileReturnsError(t *testing.T) {
	chdir(t, t.TempDir())
	config = new(Config)
	t.Cleanup(func() { config = nil })

	// 所有候选路径都不存在时必须报错，不能静默用零值配置
	if err := LoadConfig(); err == nil {
		t.Fatal("配置文件缺失应返回错误")
	}
}

func TestLoadConfigDecodesFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "configs"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := `[mainConfig]
appName = "lynk_chat_server"
host = "0.0.0.0"
port = 8000

[kafkaConfig]
commitMode = "channel"
hostPort = "localhost:9092"
commitTopic = "lynk_chat_commits"
timeout = 10000000000

[snowflakeConfig]
machineId = 7
`
	if err := os.WriteFile(filepath.Join(dir, "configs", "config.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	chdir(t, dir)
	config = new(Config)
	t.Cleanup(func() { config = nil })

	if err := LoadConfig(); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if config.MainConfig.AppName != "lynk_chat_server" || config.MainConfig.Port != 8000 {
		t.Fatalf("mainConfig = %+v", config.MainConfig)
	}
	if config.KafkaConfig.Timeout != 10*time.Second {
		t.Fatalf("kafka timeout = %v", config.KafkaConfig.Timeout)
	}
	if config.SnowflakeConfig.MachineID != 7 {
		t.Fatalf("machineId = %d", config.SnowflakeConfig.MachineID)
	}
}
