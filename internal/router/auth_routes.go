// Package router 提供 HTTP 路由注册
// 本文件定义认证相关的路由
package router

import (
	"github.com/gin-gonic/gin"

	"lynk_chat_server/internal/handler"
)

// RegisterAuthRoutes 注册认证相关路由
func RegisterAuthRoutes(r *gin.Engine, h *handler.Handlers) {
	authGroup := r.Group("/auth")
	{
		// POST /auth/checkUser - 登录校验 / 用户名可用性检查
		authGroup.POST("/checkUser", h.Auth.CheckUser)
		// POST /auth/createUser - 注册
		authGroup.POST("/createUser", h.Auth.CreateUser)
	}
}
