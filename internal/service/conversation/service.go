// Package conversation 实现会话业务逻辑
// 会话列表、单聊/群聊创建、用户检索都在这里
package conversation

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strings"

	"go.uber.org/zap"

	"lynk_chat_server/internal/dao/mysql/repository"
	"lynk_chat_server/internal/dto/request"
	"lynk_chat_server/internal/dto/respond"
	"lynk_chat_server/internal/model"
	"lynk_chat_server/internal/service/live"
	"lynk_chat_server/pkg/constants"
	"lynk_chat_server/pkg/errorx"
	"lynk_chat_server/pkg/util/pairkey"
	"lynk_chat_server/pkg/util/snowflake"
)

// conversationService 会话业务逻辑实现
type conversationService struct {
	repos     *repository.Repositories
	committer live.Committer
}

// NewConversationService 构造函数，注入 Repository 和订阅引擎依赖
func NewConversationService(repos *repository.Repositories, committer live.Committer) *conversationService {
	return &conversationService{repos: repos, committer: committer}
}

// GetUserConversations 获取用户的会话列表
// 成员行 -> 会话 uuid 集合 -> 一次批量拉取会话，
// 单聊名称站在查询者视角解析为对方用户名，对方用户名也走一次批量查询
func (s *conversationService) GetUserConversations(userId string) ([]respond.ConversationRespond, error) {
	members, err := s.repos.Member.FindByUserUuid(userId)
	if err != nil {
		zap.L().Error("查询用户会话成员关系失败", zap.String("user", userId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if len(members) == 0 {
		return []respond.ConversationRespond{}, nil
	}

	convUuids := make([]string, 0, len(members))
	for _, m := range members {
		convUuids = append(convUuids, m.ConversationUuid)
	}
	convs, err := s.repos.Conversation.FindByUuids(convUuids)
	if err != nil {
		zap.L().Error("批量查询会话失败", zap.String("user", userId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	// 先收集单聊对端的 uuid，一次批量换用户名
	otherUuids := make([]string, 0, len(convs))
	for _, conv := range convs {
		if conv.IsGroup || !conv.PairKey.Valid {
			continue
		}
		if other, ok := pairkey.Other(conv.PairKey.String, userId); ok {
			otherUuids = append(otherUuids, other)
		}
	}
	usernameByUuid := make(map[string]string, len(otherUuids))
	if len(otherUuids) > 0 {
		others, err := s.repos.User.FindByUuids(otherUuids)
		if err != nil {
			zap.L().Error("批量查询对端用户失败", zap.String("user", userId), zap.Error(err))
			return nil, errorx.ErrServerBusy
		}
		for _, u := range others {
			usernameByUuid[u.Uuid] = u.Username
		}
	}

	list := make([]respond.ConversationRespond, 0, len(convs))
	for _, conv := range convs {
		item := respond.ConversationRespond{
			Id:      conv.Uuid,
			IsGroup: conv.IsGroup,
			Name:    conv.Name,
		}
		if !conv.IsGroup && conv.PairKey.Valid {
			item.PairKey = conv.PairKey.String
			if other, ok := pairkey.Other(conv.PairKey.String, userId); ok {
				item.Name = usernameByUuid[other]
			}
		}
		list = append(list, item)
	}
	// 批量查询不保证顺序，按会话 id 排序让结果稳定可比
	sort.Slice(list, func(i, j int) bool { return list[i].Id < list[j].Id })
	return list, nil
}

// GetConversationWithId 按 id 获取单个会话
func (s *conversationService) GetConversationWithId(conversationId string) (*respond.ConversationRespond, error) {
	conv, err := s.repos.Conversation.FindByUuid(conversationId)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return nil, errorx.Newf(errorx.CodeNotFound, "会话 %s 不存在", conversationId)
		}
		zap.L().Error("查询会话失败", zap.String("conversation", conversationId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	item := &respond.ConversationRespond{
		Id:      conv.Uuid,
		IsGroup: conv.IsGroup,
		Name:    conv.Name,
	}
	if conv.PairKey.Valid {
		item.PairKey = conv.PairKey.String
	}
	return item, nil
}

// GetUsernameById 按用户 id 查用户名
func (s *conversationService) GetUsernameById(userId string) (string, error) {
	user, err := s.repos.User.FindByUuid(userId)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return "", errorx.Newf(errorx.CodeNotFound, "用户 %s 不存在", userId)
		}
		zap.L().Error("查询用户失败", zap.String("user", userId), zap.Error(err))
		return "", errorx.ErrServerBusy
	}
	return user.Username, nil
}

// SearchUsersByUsername 按用户名前缀搜索用户，上限 20 条
func (s *conversationService) SearchUsersByUsername(username string) ([]respond.SearchUserRespond, error) {
	users, err := s.repos.User.SearchByUsernamePrefix(username, constants.USER_SEARCH_LIMIT)
	if err != nil {
		zap.L().Error("搜索用户失败", zap.String("prefix", username), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	list := make([]respond.SearchUserRespond, 0, len(users))
	for _, u := range users {
		list = append(list, respond.SearchUserRespond{
			UserId:   u.Uuid,
			Username: u.Username,
			Email:    u.Email,
		})
	}
	return list, nil
}

// CreateDirectConversation 创建单聊会话
// pairKey 把"哪一方发起"抹平成同一个键；存储层的原子 get-or-create
// 保证并发双方收敛到同一个会话。只有真正新建时才广播失效事件
func (s *conversationService) CreateDirectConversation(userId1, userId2 string) (string, error) {
	if userId1 == userId2 {
		return "", errorx.New(errorx.CodeInvalidParam, "不能和自己创建单聊")
	}
	users, err := s.repos.User.FindByUuids([]string{userId1, userId2})
	if err != nil {
		zap.L().Error("校验单聊成员失败", zap.Error(err))
		return "", errorx.ErrServerBusy
	}
	if len(users) != 2 {
		return "", errorx.New(errorx.CodeNotFound, "单聊成员不存在")
	}

	key := pairkey.Build(userId1, userId2)
	conv := &model.Conversation{
		Uuid:    "C" + snowflake.GenerateIDString(),
		IsGroup: false,
		PairKey: sql.NullString{String: key, Valid: true},
	}
	winner, created, err := s.repos.Conversation.CreateDirect(conv, [2]string{userId1, userId2})
	if err != nil {
		zap.L().Error("创建单聊会话失败", zap.String("pairKey", key), zap.Error(err))
		return "", errorx.ErrServerBusy
	}
	if created {
		zap.L().Info("单聊会话已创建",
			zap.String("conversation", winner.Uuid),
			zap.String("pairKey", key),
		)
		s.committer.Commit(context.Background(),
			live.ConversationsTag(userId1),
			live.ConversationsTag(userId2),
			live.MembersTag(winner.Uuid),
		)
	}
	return winner.Uuid, nil
}

// CreateGroupConversation 创建群聊会话
// 策略：名称去空格后必须非空；除创建者外至少一名成员；
// 成员去重，创建者若不在列表里由服务端补上
func (s *conversationService) CreateGroupConversation(req request.CreateGroupConversationRequest) (string, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return "", errorx.New(errorx.CodeInvalidParam, "群聊名称不能为空")
	}

	memberSet := make(map[string]struct{}, len(req.MemberIds)+1)
	memberUuids := make([]string, 0, len(req.MemberIds)+1)
	for _, id := range append([]string{req.CreatorId}, req.MemberIds...) {
		if id == "" {
			continue
		}
		if _, ok := memberSet[id]; ok {
			continue
		}
		memberSet[id] = struct{}{}
		memberUuids = append(memberUuids, id)
	}
	if len(memberUuids) < 2 {
		return "", errorx.New(errorx.CodeInvalidParam, "群聊除创建者外至少需要一名成员")
	}

	users, err := s.repos.User.FindByUuids(memberUuids)
	if err != nil {
		zap.L().Error("校验群聊成员失败", zap.Error(err))
		return "", errorx.ErrServerBusy
	}
	if len(users) != len(memberUuids) {
		return "", errorx.New(errorx.CodeNotFound, "群聊成员不存在")
	}

	conv := &model.Conversation{
		Uuid:    "C" + snowflake.GenerateIDString(),
		IsGroup: true,
		Name:    name,
	}
	if err := s.repos.Conversation.CreateGroup(conv, memberUuids); err != nil {
		zap.L().Error("创建群聊会话失败", zap.String("name", name), zap.Error(err))
		return "", errorx.ErrServerBusy
	}
	zap.L().Info("群聊会话已创建",
		zap.String("conversation", conv.Uuid),
		zap.String("name", name),
		zap.Int("members", len(memberUuids)),
	)

	tags := make([]string, 0, len(memberUuids)+1)
	for _, userUuid := range memberUuids {
		tags = append(tags, live.ConversationsTag(userUuid))
	}
	tags = append(tags, live.MembersTag(conv.Uuid))
	s.committer.Commit(context.Background(), tags...)

	return conv.Uuid, nil
}

// userConversationsArgs 可订阅查询参数
type userConversationsArgs struct {
	UserId string `json:"userId"`
}

// UserConversationsQuery 会话列表的可订阅查询
// 读集登记在 conversations:<userId> 上，该用户进了新会话就会重算
func (s *conversationService) UserConversationsQuery() live.QueryFunc {
	return func(ctx context.Context, rawArgs json.RawMessage, rs *live.ReadSet) (any, error) {
		var args userConversationsArgs
		if err := json.Unmarshal(rawArgs, &args); err != nil || args.UserId == "" {
			return nil, errorx.ErrInvalidParam
		}
		rs.Touch(live.ConversationsTag(args.UserId))
		return s.GetUserConversations(args.UserId)
	}
}
