// Package handler 提供 HTTP 请求处理器
// 本文件处理订阅网关的 WebSocket 接入
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	ws "lynk_chat_server/internal/gateway/websocket"
	"lynk_chat_server/internal/service/live"
	"lynk_chat_server/pkg/errorx"
	"lynk_chat_server/pkg/util/jwt"
)

// upgrader WebSocket 升级器
// 前后端分离部署，跨域校验交给 CORS 中间件
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WsHandler 订阅网关接入处理器
type WsHandler struct {
	engine *live.Engine
}

// NewWsHandler 构造函数，注入订阅引擎
func NewWsHandler(engine *live.Engine) *WsHandler {
	return &WsHandler{engine: engine}
}

// Subscribe 建立订阅连接
// GET /ws/subscribe?token=xxx
// 握手用登录下发的访问令牌鉴权，升级成功后由 Client 接管连接
func (h *WsHandler) Subscribe(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		HandleError(c, errorx.New(errorx.CodeUnauthorized, "缺少访问令牌"))
		return
	}
	claims, err := jwt.ParseToken(token)
	if err != nil {
		HandleError(c, errorx.New(errorx.CodeUnauthorized, "访问令牌已过期或无效"))
		return
	}
	if claims.Subject != "access_token" {
		HandleError(c, errorx.New(errorx.CodeUnauthorized, "请使用访问令牌建立连接"))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Error("websocket 升级失败", zap.String("user", claims.UserID), zap.Error(err))
		return
	}
	ws.NewClientInit(conn, claims.UserID, h.engine)
}
