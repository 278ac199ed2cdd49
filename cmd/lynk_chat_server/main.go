package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"lynk_chat_server/internal/config"
	dao "lynk_chat_server/internal/dao/mysql"
	myredis "lynk_chat_server/internal/dao/redis"
	"lynk_chat_server/internal/handler"
	"lynk_chat_server/internal/http_server"
	"lynk_chat_server/internal/infrastructure/logger"
	"lynk_chat_server/internal/service"
	"lynk_chat_server/internal/service/live"
	"lynk_chat_server/pkg/util/jwt"
	"lynk_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, "dev"); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("日志初始化成功")

	// 3. 初始化雪花 ID 生成器
	snowflake.Init(conf.SnowflakeConfig.MachineID)

	// 4. 初始化数据库，拿到 Repository 层
	repos := dao.Init()
	zap.L().Info("数据库初始化成功")

	// 5. 初始化 Redis
	myredis.Init()
	zap.L().Info("Redis 初始化成功")

	// 6. 初始化 JWT
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry)
	zap.L().Info("JWT 初始化成功")

	// 7. 初始化 validator 错误信息翻译器
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("validator 翻译器初始化失败", zap.Error(err))
	}

	// 8. 初始化订阅引擎与提交事件代理
	// channel 模式走进程内通道，kafka 模式多节点共享一个提交事件流
	engine := live.NewEngine()
	var broker live.CommitBroker
	if conf.KafkaConfig.CommitMode == "kafka" {
		broker = live.NewKafkaBroker(engine)
	} else {
		broker = live.NewChannelBroker(engine)
	}
	engine.SetBroker(broker)

	// 9. 初始化 Service 层 (依赖注入)
	services := service.NewServices(repos, myredis.GetCacheService(), engine)
	zap.L().Info("Service 层初始化成功")

	// 10. 注册可订阅查询并启动引擎
	engine.RegisterQuery("conversation.getMsgsInConversation", services.Message.MessagesQuery())
	engine.RegisterQuery("conversation.queryUserConversations", services.Conversation.UserConversationsQuery())
	engine.Start()
	go broker.Start()
	zap.L().Info("订阅引擎初始化成功")

	// 11. 初始化 HTTP 服务器
	handlers := handler.NewHandlers(services, engine)
	ginEngine := http_server.Init(handlers)
	zap.L().Info("HTTP 服务器初始化成功")

	// 12. 启动服务
	host := conf.MainConfig.Host
	port := conf.MainConfig.Port
	go func() {
		if err := ginEngine.Run(fmt.Sprintf("%s:%d", host, port)); err != nil {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()

	// 设置信号监听
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("关闭服务器...")
	broker.Close()
	engine.Close()
	zap.L().Info("服务器已关闭")
}
