// Package live 实现实时查询订阅引擎
// engine.go
// 核心职责：订阅的生命周期管理和失效重算
// 1. 客户端按查询名 + 参数订阅，订阅时立刻执行一次并返回初始结果
// 2. 每次执行记录查询触碰到的失效标签（读集）
// 3. mutation 提交后广播写集标签，引擎重算读集相交的订阅
// 4. 重算结果与上次推送逐字节比较，只有变化才推送
// 5. 单 goroutine 按提交顺序消费事件，推送顺序即提交顺序
package live

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"lynk_chat_server/pkg/constants"
	"lynk_chat_server/pkg/errorx"
	"lynk_chat_server/pkg/util/snowflake"
)

// State 订阅状态
// Pending -> Active -> Closed，Closed 是终态
type State int32

const (
	StatePending State = iota // 初次执行进行中
	StateActive               // 读集已登记，随变更推送
	StateClosed               // 已退订或连接断开
)

// ReadSet 一次查询执行的读集记录器
// QueryFunc 在执行过程中调用 Touch 登记自己读了哪些标签
type ReadSet struct {
	tags map[string]struct{}
}

// NewReadSet 创建空读集
func NewReadSet() *ReadSet {
	return &ReadSet{tags: make(map[string]struct{})}
}

// Touch 登记一个或多个读集标签
func (rs *ReadSet) Touch(tags ...string) {
	for _, tag := range tags {
		rs.tags[tag] = struct{}{}
	}
}

// Tags 返回已登记的标签
func (rs *ReadSet) Tags() []string {
	out := make([]string, 0, len(rs.tags))
	for tag := range rs.tags {
		out = append(out, tag)
	}
	return out
}

// QueryFunc 可订阅查询
// 必须是只读、无副作用的：引擎会在任意写提交后自动重放它
type QueryFunc func(ctx context.Context, args json.RawMessage, rs *ReadSet) (any, error)

// Sink 推送出口，由 WebSocket 客户端连接实现
// 两个方法都不能无限阻塞，否则会拖住整个事件循环
type Sink interface {
	// PushResult 推送订阅的最新结果
	PushResult(subId string, data json.RawMessage)
	// PushError 推送一次重算失败的通知，订阅保持存活
	PushError(subId string, message string)
}

// subscription 一个活动订阅
// 读集标签、上次推送的结果字节都挂在这里
type subscription struct {
	key      string // clientId + "/" + subId，引擎内唯一
	clientId string
	subId    string // 客户端侧的订阅 id
	op       string
	args     json.RawMessage
	sink     Sink
	state    State
	tags     map[string]struct{}
	last     []byte // 上次推送的结果，逐字节比较去重
}

// Engine 订阅引擎
// 写路径实现 Committer，代理消费端实现 Dispatcher
type Engine struct {
	mu       sync.RWMutex
	queries  map[string]QueryFunc
	subs     map[string]*subscription
	byClient map[string]map[string]*subscription
	byTag    map[string]map[string]*subscription // 标签倒排索引，避免全表扫描
	gen      uint64                              // 已处理的提交事件数，用于订阅初查的一致性判定

	broker    CommitBroker
	events    chan CommitEvent
	done      chan struct{}
	closeOnce sync.Once
}

// NewEngine 创建订阅引擎
func NewEngine() *Engine {
	return &Engine{
		queries:  make(map[string]QueryFunc),
		subs:     make(map[string]*subscription),
		byClient: make(map[string]map[string]*subscription),
		byTag:    make(map[string]map[string]*subscription),
		events:   make(chan CommitEvent, constants.SUBSCRIPTION_QUEUE),
		done:     make(chan struct{}),
	}
}

// RegisterQuery 注册可订阅查询
// 应在 Start 之前完成全部注册
func (e *Engine) RegisterQuery(name string, fn QueryFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queries[name] = fn
}

// SetBroker 注入提交事件代理
// 不注入时 Commit 直接走本机 Dispatch（测试用）
func (e *Engine) SetBroker(broker CommitBroker) {
	e.broker = broker
}

// Commit 实现 Committer 接口
// mutation 在数据库事务提交之后调用，宣告本次写集
func (e *Engine) Commit(ctx context.Context, tags ...string) {
	if len(tags) == 0 {
		return
	}
	ev := CommitEvent{
		Seq:  snowflake.GenerateID(),
		Tags: tags,
	}
	if e.broker != nil {
		if err := e.broker.Publish(ctx, ev); err != nil {
			zap.L().Error("publish commit event failed", zap.Error(err), zap.Strings("tags", tags))
		}
		return
	}
	e.Dispatch(ev)
}

// Dispatch 实现 Dispatcher 接口：事件入队
// 队列满时阻塞而不是丢弃，失效事件一条都不能少
func (e *Engine) Dispatch(ev CommitEvent) {
	select {
	case e.events <- ev:
	case <-e.done:
	}
}

// Start 启动事件循环
func (e *Engine) Start() {
	go e.run()
}

// run 单 goroutine 消费事件，保证推送按提交顺序
func (e *Engine) run() {
	zap.L().Info("live subscription engine started")
	for {
		select {
		case ev := <-e.events:
			e.process(ev)
		case <-e.done:
			return
		}
	}
}

// Close 关闭引擎
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		close(e.done)
	})
}

// Subscribe 建立订阅
// 立刻执行一次查询（Pending），成功后登记读集进入 Active 并返回初始结果；
// 初次执行失败则不建立订阅，错误原样返回给客户端。
// 初查和读集登记不在同一临界区里，执行期间若有提交被处理，
// 该提交不会匹配到尚未登记的订阅，初始结果就可能是旧的；
// 所以登记前比对事件代数，发现错过提交就整体重来
func (e *Engine) Subscribe(ctx context.Context, clientId, subId, op string, args json.RawMessage, sink Sink) (json.RawMessage, error) {
	for {
		e.mu.RLock()
		fn, ok := e.queries[op]
		startGen := e.gen
		e.mu.RUnlock()
		if !ok {
			return nil, errorx.Newf(errorx.CodeNotFound, "未注册的可订阅查询 %s", op)
		}

		rs := NewReadSet()
		result, err := fn(ctx, args, rs)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(result)
		if err != nil {
			return nil, errorx.Wrap(err, errorx.CodeServerBusy, "订阅结果序列化失败")
		}

		sub := &subscription{
			key:      clientId + "/" + subId,
			clientId: clientId,
			subId:    subId,
			op:       op,
			args:     args,
			sink:     sink,
			state:    StateActive,
			tags:     make(map[string]struct{}),
			last:     data,
		}

		e.mu.Lock()
		if e.gen != startGen {
			// 执行期间有提交被处理，结果可能已过期，重新执行
			e.mu.Unlock()
			continue
		}
		// 同名订阅重复 subscribe 视为替换
		if old, ok := e.subs[sub.key]; ok {
			e.removeLocked(old)
		}
		e.subs[sub.key] = sub
		if e.byClient[clientId] == nil {
			e.byClient[clientId] = make(map[string]*subscription)
		}
		e.byClient[clientId][subId] = sub
		e.retagLocked(sub, rs.Tags())
		e.mu.Unlock()

		return data, nil
	}
}

// Unsubscribe 退订
// 释放读集登记，之后不再向该订阅推送
func (e *Engine) Unsubscribe(clientId, subId string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if sub, ok := e.subs[clientId+"/"+subId]; ok {
		e.removeLocked(sub)
	}
}

// CloseClient 客户端断开时释放其全部订阅
func (e *Engine) CloseClient(clientId string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, sub := range e.byClient[clientId] {
		e.removeLocked(sub)
	}
	delete(e.byClient, clientId)
}

// removeLocked 摘除订阅并置 Closed（需持有写锁）
func (e *Engine) removeLocked(sub *subscription) {
	sub.state = StateClosed
	delete(e.subs, sub.key)
	if clientSubs, ok := e.byClient[sub.clientId]; ok {
		delete(clientSubs, sub.subId)
	}
	for tag := range sub.tags {
		delete(e.byTag[tag], sub.key)
		if len(e.byTag[tag]) == 0 {
			delete(e.byTag, tag)
		}
	}
}

// retagLocked 用最新一次执行的读集替换订阅的标签登记（需持有写锁）
func (e *Engine) retagLocked(sub *subscription, tags []string) {
	for tag := range sub.tags {
		delete(e.byTag[tag], sub.key)
		if len(e.byTag[tag]) == 0 {
			delete(e.byTag, tag)
		}
	}
	sub.tags = make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		sub.tags[tag] = struct{}{}
		if e.byTag[tag] == nil {
			e.byTag[tag] = make(map[string]*subscription)
		}
		e.byTag[tag][sub.key] = sub
	}
}

// process 处理一条提交事件
// 倒排索引求出读写集相交的订阅并逐个重算
// 推进事件代数和快照订阅在同一临界区里，正在初查的 Subscribe
// 要么在本事件之前登记完（会被匹配到），要么看到代数变化后重算
func (e *Engine) process(ev CommitEvent) {
	e.mu.Lock()
	e.gen++
	matched := make(map[string]*subscription)
	for _, tag := range ev.Tags {
		for key, sub := range e.byTag[tag] {
			matched[key] = sub
		}
	}
	e.mu.Unlock()

	for _, sub := range matched {
		e.refresh(sub)
	}
}

// refresh 重算一个订阅并在结果变化时推送
// 重算失败只记日志并通知客户端，订阅保留，下次相关提交会再次重试
func (e *Engine) refresh(sub *subscription) {
	e.mu.RLock()
	fn, ok := e.queries[sub.op]
	e.mu.RUnlock()
	if !ok {
		return
	}

	rs := NewReadSet()
	result, err := fn(context.Background(), sub.args, rs)
	if err != nil {
		zap.L().Error("订阅重算失败",
			zap.String("op", sub.op),
			zap.String("sub", sub.key),
			zap.Error(err),
		)
		sub.sink.PushError(sub.subId, "subscription refresh failed")
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		zap.L().Error("订阅结果序列化失败", zap.String("op", sub.op), zap.Error(err))
		return
	}

	e.mu.Lock()
	if sub.state != StateActive {
		// 重算期间被退订，结果作废
		e.mu.Unlock()
		return
	}
	e.retagLocked(sub, rs.Tags())
	changed := !bytes.Equal(sub.last, data)
	if changed {
		sub.last = data
	}
	e.mu.Unlock()

	if changed {
		sub.sink.PushResult(sub.subId, data)
	}
}
