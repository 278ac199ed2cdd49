package conversation_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"lynk_chat_server/internal/dao/mysql/repository"
	"lynk_chat_server/internal/dto/request"
	"lynk_chat_server/internal/model"
	"lynk_chat_server/internal/service/conversation"
	"lynk_chat_server/internal/service/live"
	"lynk_chat_server/pkg/errorx"
	"lynk_chat_server/pkg/util/pairkey"
	"lynk_chat_server/pkg/util/snowflake"
)

func TestMain(m *testing.M) {
	snowflake.Init(2)
	m.Run()
}

// fakeCommitter 记录写路径宣告的失效标签
type fakeCommitter struct {
	mu      sync.Mutex
	commits [][]string
}

func (f *fakeCommitter) Commit(ctx context.Context, tags ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commits = append(f.commits, tags)
}

func (f *fakeCommitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.commits)
}

func (f *fakeCommitter) lastTags() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.commits) == 0 {
		return nil
	}
	return f.commits[len(f.commits)-1]
}

// memStore 内存版数据层，同时实现用户、会话、成员三个 Repository
type memStore struct {
	mu        sync.Mutex
	users     map[string]*model.User // by uuid
	convs     map[string]*model.Conversation
	byPairKey map[string]string // pairKey -> conv uuid
	members   []model.ConversationMember
}

func newMemStore() *memStore {
	return &memStore{
		users:     make(map[string]*model.User),
		convs:     make(map[string]*model.Conversation),
		byPairKey: make(map[string]string),
	}
}

func (s *memStore) addUser(uuid, username string) {
	s.users[uuid] = &model.User{Uuid: uuid, Username: username}
}

// UserRepository

func (s *memStore) Create(user *model.User) error { return nil }

func (s *memStore) FindByUuid(uuid string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[uuid]; ok {
		return u, nil
	}
	return nil, errorx.Newf(errorx.CodeNotFound, "用户 %s 不存在", uuid)
}

func (s *memStore) FindByUsername(username string) (*model.User, error) {
	return nil, errorx.Newf(errorx.CodeNotFound, "用户名 %s 不存在", username)
}

func (s *memStore) FindByUuids(uuids []string) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.User
	for _, uuid := range uuids {
		if u, ok := s.users[uuid]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *memStore) SearchByUsernamePrefix(prefix string, limit int) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.User
	for _, u := range s.users {
		if strings.HasPrefix(u.Username, prefix) && len(out) < limit {
			out = append(out, *u)
		}
	}
	return out, nil
}

// conversationRepo 会话侧的内存实现，基于同一个 memStore
type conversationRepo struct{ *memStore }

func (s conversationRepo) FindByUuid(uuid string) (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.convs[uuid]; ok {
		return c, nil
	}
	return nil, errorx.Newf(errorx.CodeNotFound, "会话 %s 不存在", uuid)
}

func (s conversationRepo) FindByPairKey(key string) (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if uuid, ok := s.byPairKey[key]; ok {
		return s.convs[uuid], nil
	}
	return nil, errorx.Newf(errorx.CodeNotFound, "pairKey %s 不存在", key)
}

func (s conversationRepo) FindByUuids(uuids []string) ([]model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Conversation
	for _, uuid := range uuids {
		if c, ok := s.convs[uuid]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s conversationRepo) CreateDirect(conv *model.Conversation, memberUuids [2]string) (*model.Conversation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if uuid, ok := s.byPairKey[conv.PairKey.String]; ok {
		return s.convs[uuid], false, nil
	}
	stored := *conv
	s.convs[conv.Uuid] = &stored
	s.byPairKey[conv.PairKey.String] = conv.Uuid
	for _, userUuid := range memberUuids {
		s.members = append(s.members, model.ConversationMember{ConversationUuid: conv.Uuid, UserUuid: userUuid})
	}
	return &stored, true, nil
}

func (s conversationRepo) CreateGroup(conv *model.Conversation, memberUuids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *conv
	s.convs[conv.Uuid] = &stored
	for _, userUuid := range memberUuids {
		s.members = append(s.members, model.ConversationMember{ConversationUuid: conv.Uuid, UserUuid: userUuid})
	}
	return nil
}

// memberRepo 成员侧的内存实现
type memberRepo struct{ *memStore }

func (s memberRepo) FindByUserUuid(userUuid string) ([]model.ConversationMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ConversationMember
	for _, m := range s.members {
		if m.UserUuid == userUuid {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s memberRepo) FindByConversationUuid(conversationUuid string) ([]model.ConversationMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ConversationMember
	for _, m := range s.members {
		if m.ConversationUuid == conversationUuid {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s memberRepo) IsMember(conversationUuid, userUuid string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		if m.ConversationUuid == conversationUuid && m.UserUuid == userUuid {
			return true, nil
		}
	}
	return false, nil
}

func testRepos(store *memStore) *repository.Repositories {
	return &repository.Repositories{
		User:         store,
		Conversation: conversationRepo{store},
		Member:       memberRepo{store},
	}
}

func TestCreateDirectConversationIsIdempotent(t *testing.T) {
	store := newMemStore()
	store.addUser("U1", "alice")
	store.addUser("U2", "bob")
	committer := &fakeCommitter{}
	svc := conversation.NewConversationService(testRepos(store), committer)

	id1, err := svc.CreateDirectConversation("U1", "U2")
	if err != nil {
		t.Fatalf("CreateDirectConversation: %v", err)
	}
	if committer.count() != 1 {
		t.Fatalf("新建会话应提交一次失效事件，got %d", committer.count())
	}

	// 两个方向重复创建都应收敛到同一个会话，且不再提交事件
	id2, err := svc.CreateDirectConversation("U2", "U1")
	if err != nil {
		t.Fatalf("CreateDirectConversation: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("同一对用户应收敛到同一会话：%s != %s", id1, id2)
	}
	if committer.count() != 1 {
		t.Fatalf("幂等命中不应重复提交事件，got %d", committer.count())
	}
}

func TestCreateDirectConversationCommitsTags(t *testing.T) {
	store := newMemStore()
	store.addUser("U1", "alice")
	store.addUser("U2", "bob")
	committer := &fakeCommitter{}
	svc := conversation.NewConversationService(testRepos(store), committer)

	id, err := svc.CreateDirectConversation("U1", "U2")
	if err != nil {
		t.Fatalf("CreateDirectConversation: %v", err)
	}

	want := map[string]bool{
		"conversations:U1": true,
		"conversations:U2": true,
		"members:" + id:    true,
	}
	tags := committer.lastTags()
	if len(tags) != len(want) {
		t.Fatalf("写集标签 = %v", tags)
	}
	for _, tag := range tags {
		if !want[tag] {
			t.Fatalf("意外的写集标签 %s", tag)
		}
	}
}

func TestCreateDirectConversationValidation(t *testing.T) {
	store := newMemStore()
	store.addUser("U1", "alice")
	committer := &fakeCommitter{}
	svc := conversation.NewConversationService(testRepos(store), committer)

	if _, err := svc.CreateDirectConversation("U1", "U1"); errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("和自己建单聊应是参数错误，got %v", err)
	}
	if _, err := svc.CreateDirectConversation("U1", "U404"); errorx.GetCode(err) != errorx.CodeNotFound {
		t.Fatalf("对端不存在应是 CodeNotFound，got %v", err)
	}
	if committer.count() != 0 {
		t.Fatal("失败路径不应提交失效事件")
	}
}

func TestCreateGroupConversationValidation(t *testing.T) {
	store := newMemStore()
	store.addUser("U1", "alice")
	store.addUser("U2", "bob")
	committer := &fakeCommitter{}
	svc := conversation.NewConversationService(testRepos(store), committer)

	cases := []struct {
		name string
		req  request.CreateGroupConversationRequest
		code int
	}{
		{"空名称", request.CreateGroupConversationRequest{Name: "   ", CreatorId: "U1", MemberIds: []string{"U2"}}, errorx.CodeInvalidParam},
		{"只有创建者", request.CreateGroupConversationRequest{Name: "team", CreatorId: "U1", MemberIds: []string{"U1"}}, errorx.CodeInvalidParam},
		{"成员不存在", request.CreateGroupConversationRequest{Name: "team", CreatorId: "U1", MemberIds: []string{"U404"}}, errorx.CodeNotFound},
	}
	for _, tc := range cases {
		if _, err := svc.CreateGroupConversation(tc.req); errorx.GetCode(err) != tc.code {
			t.Fatalf("%s: 错误码 = %d, want %d (err=%v)", tc.name, errorx.GetCode(err), tc.code, err)
		}
	}
	if committer.count() != 0 {
		t.Fatal("失败路径不应提交失效事件")
	}
}

func TestCreateGroupConversationDedupesAndAddsCreator(t *testing.T) {
	store := newMemStore()
	store.addUser("U1", "alice")
	store.addUser("U2", "bob")
	store.addUser("U3", "carol")
	committer := &fakeCommitter{}
	svc := conversation.NewConversationService(testRepos(store), committer)

	id, err := svc.CreateGroupConversation(request.CreateGroupConversationRequest{
		Name:      "team",
		CreatorId: "U1",
		MemberIds: []string{"U2", "U2", "U3"},
	})
	if err != nil {
		t.Fatalf("CreateGroupConversation: %v", err)
	}

	members, _ := memberRepo{store}.FindByConversationUuid(id)
	if len(members) != 3 {
		t.Fatalf("去重并补上创建者后应是 3 个成员，got %d", len(members))
	}
	// 每个成员一个 conversations 标签 + 一个 members 标签
	if tags := committer.lastTags(); len(tags) != 4 {
		t.Fatalf("写集标签 = %v", tags)
	}
}

func TestGetUserConversationsResolvesDirectNames(t *testing.T) {
	store := newMemStore()
	store.addUser("U1", "alice")
	store.addUser("U2", "bob")
	store.addUser("U3", "carol")
	committer := &fakeCommitter{}
	svc := conversation.NewConversationService(testRepos(store), committer)

	directId, err := svc.CreateDirectConversation("U1", "U2")
	if err != nil {
		t.Fatalf("CreateDirectConversation: %v", err)
	}
	groupId, err := svc.CreateGroupConversation(request.CreateGroupConversationRequest{
		Name:      "team",
		CreatorId: "U1",
		MemberIds: []string{"U3"},
	})
	if err != nil {
		t.Fatalf("CreateGroupConversation: %v", err)
	}

	list, err := svc.GetUserConversations("U1")
	if err != nil {
		t.Fatalf("GetUserConversations: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("会话数 = %d", len(list))
	}
	for _, item := range list {
		switch item.Id {
		case directId:
			if item.IsGroup || item.Name != "bob" {
				t.Fatalf("单聊名称应是对方用户名：%+v", item)
			}
			if item.PairKey != pairkey.Build("U1", "U2") {
				t.Fatalf("pairKey = %s", item.PairKey)
			}
		case groupId:
			if !item.IsGroup || item.Name != "team" {
				t.Fatalf("群聊应保留群名：%+v", item)
			}
		default:
			t.Fatalf("意外的会话 %s", item.Id)
		}
	}

	// 对方视角看到的是发起者的用户名
	list, err = svc.GetUserConversations("U2")
	if err != nil {
		t.Fatalf("GetUserConversations: %v", err)
	}
	if len(list) != 1 || list[0].Name != "alice" {
		t.Fatalf("U2 视角：%+v", list)
	}
}

func TestGetUserConversationsEmpty(t *testing.T) {
	store := newMemStore()
	store.addUser("U1", "alice")
	committer := &fakeCommitter{}
	svc := conversation.NewConversationService(testRepos(store), committer)

	list, err := svc.GetUserConversations("U1")
	if err != nil {
		t.Fatalf("GetUserConversations: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("无会话应返回空切片，got %v", list)
	}
}

func TestSearchUsersByUsername(t *testing.T) {
	store := newMemStore()
	store.addUser("U1", "alice")
	store.addUser("U2", "alicia")
	store.addUser("U3", "bob")
	committer := &fakeCommitter{}
	svc := conversation.NewConversationService(testRepos(store), committer)

	list, err := svc.SearchUsersByUsername("ali")
	if err != nil {
		t.Fatalf("SearchUsersByUsername: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("前缀 ali 应命中 2 个用户，got %v", list)
	}
}

func TestUserConversationsQueryTouchesTag(t *testing.T) {
	store := newMemStore()
	store.addUser("U1", "alice")
	committer := &fakeCommitter{}
	svc := conversation.NewConversationService(testRepos(store), committer)

	fn := svc.UserConversationsQuery()
	rs := live.NewReadSet()
	if _, err := fn(context.Background(), []byte(`{"userId":"U1"}`), rs); err != nil {
		t.Fatalf("query: %v", err)
	}
	tags := rs.Tags()
	if len(tags) != 1 || tags[0] != "conversations:U1" {
		t.Fatalf("读集 = %v", tags)
	}

	if _, err := fn(context.Background(), []byte(`{}`), live.NewReadSet()); errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("缺 userId 应是参数错误，got %v", err)
	}
}
