// Package auth 实现认证业务逻辑
// checkUser 的响应形态（success/message/userId/email）沿用旧前端约定，
// 密码以 bcrypt 哈希落库，对外契约不变
package auth

import (
	"go.uber.org/zap"

	"lynk_chat_server/internal/dao/mysql/repository"
	"lynk_chat_server/internal/dto/request"
	"lynk_chat_server/internal/dto/respond"
	"lynk_chat_server/internal/model"
	"lynk_chat_server/pkg/errorx"
	"lynk_chat_server/pkg/util/jwt"
	"lynk_chat_server/pkg/util/snowflake"
)

// authService 认证业务逻辑实现
type authService struct {
	repos *repository.Repositories
}

// NewAuthService 构造函数，注入 Repository 依赖
func NewAuthService(repos *repository.Repositories) *authService {
	return &authService{repos: repos}
}

// CheckUser 登录校验或用户名可用性检查
// action == "signup" 时只检查用户名是否已被占用；
// 否则按用户名 + 密码做登录校验，成功附带访问令牌
func (s *authService) CheckUser(req request.CheckUserRequest) (*respond.CheckUserRespond, error) {
	user, err := s.repos.User.FindByUsername(req.Username)
	if err != nil && errorx.GetCode(err) != errorx.CodeNotFound {
		zap.L().Error("查询用户失败", zap.String("username", req.Username), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	exists := err == nil

	if req.Action == "signup" {
		if exists {
			return &respond.CheckUserRespond{Success: false, Message: "Username already taken"}, nil
		}
		return &respond.CheckUserRespond{Success: true, Message: "Username available"}, nil
	}

	if !exists {
		return &respond.CheckUserRespond{Success: false, Message: "User not found"}, nil
	}
	if !user.CheckPassword(req.Password) {
		return &respond.CheckUserRespond{Success: false, Message: "Incorrect password"}, nil
	}

	token, err := jwt.GenerateAccessToken(user.Uuid)
	if err != nil {
		zap.L().Error("生成访问令牌失败", zap.String("user", user.Uuid), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return &respond.CheckUserRespond{
		Success: true,
		Message: "Validation successful",
		UserId:  user.Uuid,
		Email:   user.Email,
		Token:   token,
	}, nil
}

// CreateUser 注册用户
// 不做预查重：用户名唯一性由存储层唯一索引裁决，
// 并发注册同名用户时输家拿到 CodeUserExist
func (s *authService) CreateUser(req request.CreateUserRequest) (string, error) {
	user := &model.User{
		Uuid:        "U" + snowflake.GenerateIDString(),
		Username:    req.Username,
		Email:       req.Email,
		RawPassword: req.Password, // BeforeSave Hook 里做 bcrypt 哈希
	}
	if err := s.repos.User.Create(user); err != nil {
		if errorx.GetCode(err) == errorx.CodeUserExist {
			return "", err
		}
		zap.L().Error("创建用户失败", zap.String("username", req.Username), zap.Error(err))
		return "", errorx.ErrServerBusy
	}
	zap.L().Info("用户注册成功", zap.String("user", user.Uuid), zap.String("username", user.Username))
	return user.Uuid, nil
}
