// Package handler 提供 HTTP 请求处理器
// 本文件处理认证相关的 API 请求
package handler

import (
	"lynk_chat_server/internal/dto/request"
	"lynk_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler 认证请求处理器
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler 构造函数，注入 AuthService 依赖
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// CheckUser 登录校验 / 用户名可用性检查
// POST /auth/checkUser
// 请求体: request.CheckUserRequest
// 响应: respond.CheckUserRespond
// 校验失败（用户不存在、密码错误、用户名被占用）走 success=false 的
// 正常响应而不是错误码，前端按 message 提示
func (h *AuthHandler) CheckUser(c *gin.Context) {
	var req request.CheckUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	rsp, err := h.authService.CheckUser(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// CreateUser 注册
// POST /auth/createUser
// 请求体: request.CreateUserRequest
// 响应: { userId: string }
// 用户名已被占用返回 CodeUserExist
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req request.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	userId, err := h.authService.CreateUser(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"userId": userId})
}
