// Package message 实现消息业务逻辑
// 发送走 成员校验 -> 落库 -> 删缓存 -> 提交失效事件 的顺序，
// 保证订阅重算时读不到旧缓存
package message

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.uber.org/zap"

	"lynk_chat_server/internal/dao/mysql/repository"
	myredis "lynk_chat_server/internal/dao/redis"
	"lynk_chat_server/internal/dto/request"
	"lynk_chat_server/internal/dto/respond"
	"lynk_chat_server/internal/model"
	"lynk_chat_server/internal/service/live"
	"lynk_chat_server/pkg/constants"
	"lynk_chat_server/pkg/errorx"
	"lynk_chat_server/pkg/util/snowflake"
)

// messageService 消息业务逻辑实现
type messageService struct {
	repos     *repository.Repositories
	cache     myredis.AsyncCacheService
	committer live.Committer
}

// NewMessageService 构造函数，注入 Repository、缓存和订阅引擎依赖
func NewMessageService(repos *repository.Repositories, cache myredis.AsyncCacheService, committer live.Committer) *messageService {
	return &messageService{repos: repos, cache: cache, committer: committer}
}

// messageListKey 会话消息页的缓存键
func messageListKey(conversationId string) string {
	return "message_list_" + conversationId
}

// messageVerKey 会话消息页的版本键
// 每次发送消息写入一个新的唯一值；回源读拿它判断自己算出的页
// 在异步回填执行时是否已经过期
func messageVerKey(conversationId string) string {
	return "message_ver_" + conversationId
}

// SendMessage 发送消息
// 会话必须存在且发送者必须是成员；消息 id 用雪花 id，
// 同一毫秒内多条消息靠 id 单调递增保证稳定顺序
func (s *messageService) SendMessage(req request.SendMessageRequest) (string, error) {
	conv, err := s.repos.Conversation.FindByUuid(req.ConversationId)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return "", errorx.Newf(errorx.CodeNotFound, "会话 %s 不存在", req.ConversationId)
		}
		zap.L().Error("查询会话失败", zap.String("conversation", req.ConversationId), zap.Error(err))
		return "", errorx.ErrServerBusy
	}

	isMember, err := s.repos.Member.IsMember(conv.Uuid, req.SenderId)
	if err != nil {
		zap.L().Error("查询成员关系失败",
			zap.String("conversation", conv.Uuid),
			zap.String("sender", req.SenderId),
			zap.Error(err),
		)
		return "", errorx.ErrServerBusy
	}
	if !isMember {
		zap.L().Warn("非成员尝试发送消息",
			zap.String("conversation", conv.Uuid),
			zap.String("sender", req.SenderId),
		)
		return "", errorx.ErrNotAMember
	}

	msg := &model.Message{
		Uuid:             snowflake.GenerateID(),
		ConversationUuid: conv.Uuid,
		SenderUuid:       req.SenderId,
		Content:          req.Content,
		SentAt:           time.Now().UnixMilli(),
	}
	if err := s.repos.Message.Create(msg); err != nil {
		zap.L().Error("消息落库失败", zap.String("conversation", conv.Uuid), zap.Error(err))
		return "", errorx.ErrServerBusy
	}

	// 先推进版本号再删页缓存：正在回源的读请求看到版本变化会放弃回填，
	// 旧页不会在删除之后被写回
	if err := s.cache.Set(context.Background(), messageVerKey(conv.Uuid), snowflake.GenerateIDString(), 0); err != nil {
		zap.L().Error("推进消息缓存版本失败", zap.String("conversation", conv.Uuid), zap.Error(err))
	}
	if err := s.cache.Delete(context.Background(), messageListKey(conv.Uuid)); err != nil {
		zap.L().Error("删除消息缓存失败", zap.String("conversation", conv.Uuid), zap.Error(err))
	}
	s.committer.Commit(context.Background(), live.MessagesTag(conv.Uuid))

	return strconv.FormatInt(msg.Uuid, 10), nil
}

// GetMessageList 获取会话最近一页消息，按发送时间升序
// conversationId 为空时返回空列表（前端首屏尚未选中会话）
// 缓存未命中回源数据库，并异步回填缓存
func (s *messageService) GetMessageList(conversationId string) ([]respond.MessageRespond, error) {
	if conversationId == "" {
		return []respond.MessageRespond{}, nil
	}

	key := messageListKey(conversationId)
	if cached, err := s.cache.GetOrError(context.Background(), key); err == nil {
		var list []respond.MessageRespond
		if err := json.Unmarshal([]byte(cached), &list); err == nil {
			return list, nil
		}
		zap.L().Warn("消息缓存损坏，回源数据库", zap.String("key", key))
	}

	// 回源前记下版本，之后的 SendMessage 会改变它
	ver, _ := s.cache.Get(context.Background(), messageVerKey(conversationId))
	list, err := s.loadMessagePage(conversationId)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(list); err == nil {
		s.cache.SubmitTask(func() {
			// 版本变了说明期间有新消息落库，这一页已过期，放弃回填
			latest, err := s.cache.Get(context.Background(), messageVerKey(conversationId))
			if err != nil || latest != ver {
				return
			}
			if err := s.cache.Set(context.Background(), key, string(data), constants.REDIS_TIMEOUT*time.Minute); err != nil {
				zap.L().Error("回填消息缓存失败", zap.String("key", key), zap.Error(err))
			}
		})
	}
	return list, nil
}

// loadMessagePage 从数据库读取会话最近一页消息并转为响应结构
func (s *messageService) loadMessagePage(conversationId string) ([]respond.MessageRespond, error) {
	msgs, err := s.repos.Message.FindRecentByConversation(conversationId, constants.MESSAGE_PAGE_SIZE)
	if err != nil {
		zap.L().Error("查询消息列表失败", zap.String("conversation", conversationId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	list := make([]respond.MessageRespond, 0, len(msgs))
	for _, m := range msgs {
		list = append(list, respond.MessageRespond{
			Id:             strconv.FormatInt(m.Uuid, 10),
			ConversationId: m.ConversationUuid,
			SenderId:       m.SenderUuid,
			Content:        m.Content,
			CreatedAt:      m.SentAt,
		})
	}
	return list, nil
}

// messagesArgs 可订阅查询参数
// conversationId 允许为空，此时结果恒为空列表且不登记任何标签
type messagesArgs struct {
	ConversationId string `json:"conversationId"`
}

// MessagesQuery 消息列表的可订阅查询
// 读集登记在 messages:<conversationId> 上，该会话有新消息就会重算
func (s *messageService) MessagesQuery() live.QueryFunc {
	return func(ctx context.Context, rawArgs json.RawMessage, rs *live.ReadSet) (any, error) {
		var args messagesArgs
		if len(rawArgs) > 0 {
			if err := json.Unmarshal(rawArgs, &args); err != nil {
				return nil, errorx.ErrInvalidParam
			}
		}
		if args.ConversationId == "" {
			return []respond.MessageRespond{}, nil
		}
		rs.Touch(live.MessagesTag(args.ConversationId))
		// 重算绕过页缓存直读数据库，不会把尚未失效的旧页推给订阅者
		return s.loadMessagePage(args.ConversationId)
	}
}
