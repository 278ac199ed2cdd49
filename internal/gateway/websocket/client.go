// Package websocket 实现订阅网关的 WebSocket 客户端连接
// 一条连接承载一个客户端的全部订阅：
// 读泵解析 subscribe/unsubscribe 帧，写泵把引擎的推送发回去
package websocket

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"lynk_chat_server/internal/service/live"
	"lynk_chat_server/pkg/constants"
)

// clientFrame 客户端上行帧
// type: subscribe / unsubscribe
type clientFrame struct {
	Type string          `json:"type"`
	Id   string          `json:"id"`
	Op   string          `json:"op"`
	Args json.RawMessage `json:"args"`
}

// serverFrame 服务端下行帧
// type: result（初始结果和增量推送共用）/ error
type serverFrame struct {
	Type    string          `json:"type"`
	Id      string          `json:"id"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Client 一条 WebSocket 连接
// 实现 live.Sink，引擎的推送经 sendBack 走写泵串行发出
type Client struct {
	conn      *websocket.Conn
	userUuid  string // 握手时从令牌解析出来的用户，鉴权基准
	clientKey string // 引擎内的连接标识，每条连接唯一
	engine    *live.Engine
	sendBack  chan []byte
	done      chan struct{}
}

// NewClientInit 创建客户端并启动读写泵
func NewClientInit(conn *websocket.Conn, userUuid string, engine *live.Engine) *Client {
	client := &Client{
		conn:      conn,
		userUuid:  userUuid,
		clientKey: uuid.NewString(),
		engine:    engine,
		sendBack:  make(chan []byte, constants.CHANNEL_SIZE),
		done:      make(chan struct{}),
	}
	go client.Read()
	go client.Write()
	zap.L().Info("websocket 客户端已接入", zap.String("user", userUuid), zap.String("client", client.clientKey))
	return client
}

// PushResult 实现 live.Sink，推送订阅的最新结果
func (c *Client) PushResult(subId string, data json.RawMessage) {
	c.send(serverFrame{Type: "result", Id: subId, Data: data})
}

// PushError 实现 live.Sink，通知一次重算失败
func (c *Client) PushError(subId string, message string) {
	c.send(serverFrame{Type: "error", Id: subId, Message: message})
}

// send 序列化下行帧并交给写泵
// 连接已关闭时直接丢弃，引擎随后会在 CloseClient 里摘掉订阅
func (c *Client) send(frame serverFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		zap.L().Error("下行帧序列化失败", zap.Error(err))
		return
	}
	select {
	case c.sendBack <- data:
	case <-c.done:
	}
}

// Read 读泵
// 循环读取上行帧并处理订阅指令，连接断开时统一清理
func (c *Client) Read() {
	defer c.close()
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Warn("websocket 读取失败", zap.String("user", c.userUuid), zap.Error(err))
			}
			return
		}
		var frame clientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			zap.L().Warn("上行帧解析失败", zap.String("user", c.userUuid), zap.Error(err))
			continue
		}
		c.handle(frame)
	}
}

// handle 处理一条上行帧
func (c *Client) handle(frame clientFrame) {
	switch frame.Type {
	case "subscribe":
		if frame.Id == "" || frame.Op == "" {
			c.send(serverFrame{Type: "error", Id: frame.Id, Message: "subscribe 帧缺少 id 或 op"})
			return
		}
		if !c.authorize(frame.Args) {
			c.send(serverFrame{Type: "error", Id: frame.Id, Message: "无权订阅其他用户的数据"})
			return
		}
		data, err := c.engine.Subscribe(context.Background(), c.clientKey, frame.Id, frame.Op, frame.Args, c)
		if err != nil {
			zap.L().Warn("订阅建立失败",
				zap.String("user", c.userUuid),
				zap.String("op", frame.Op),
				zap.Error(err),
			)
			c.send(serverFrame{Type: "error", Id: frame.Id, Message: err.Error()})
			return
		}
		c.send(serverFrame{Type: "result", Id: frame.Id, Data: data})
	case "unsubscribe":
		c.engine.Unsubscribe(c.clientKey, frame.Id)
	default:
		c.send(serverFrame{Type: "error", Id: frame.Id, Message: "未知的帧类型 " + frame.Type})
	}
}

// authorize 订阅鉴权
// 参数里带 userId 的查询只允许订阅自己
func (c *Client) authorize(rawArgs json.RawMessage) bool {
	if len(rawArgs) == 0 {
		return true
	}
	var args struct {
		UserId string `json:"userId"`
	}
	if err := json.Unmarshal(rawArgs, &args); err != nil {
		return false
	}
	return args.UserId == "" || args.UserId == c.userUuid
}

// Write 写泵
// 单 goroutine 串行写出，避免并发写同一连接
func (c *Client) Write() {
	for {
		select {
		case data := <-c.sendBack:
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				zap.L().Warn("websocket 写出失败", zap.String("user", c.userUuid), zap.Error(err))
				return
			}
		case <-c.done:
			return
		}
	}
}

// close 连接收尾：摘掉引擎里的全部订阅并关闭底层连接
func (c *Client) close() {
	select {
	case <-c.done:
		return
	default:
	}
	close(c.done)
	c.engine.CloseClient(c.clientKey)
	if err := c.conn.Close(); err != nil {
		zap.L().Warn("关闭 websocket 连接失败", zap.String("user", c.userUuid), zap.Error(err))
	}
	zap.L().Info("websocket 客户端已断开", zap.String("user", c.userUuid), zap.String("client", c.clientKey))
}
