package service

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/propflow/propertyflow/internal/auth"
	"github.com/propflow/propertyflow/internal/model"
	"github.com/propflow/propertyflow/internal/repository"
	"github.com/propflow/propertyflow/internal/workflow"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResult 登录结果
// User 不含密码哈希(模型上 json:"-" 保证不序列化)
type LoginResult struct {
	Token string           `json:"token"`
	User  *model.UserModel `json:"user"`
}

// AuthService 认证服务接口
type AuthService interface {
	Login(req *LoginRequest, meta ClientMeta) (*LoginResult, error)
	Logout(userID string, meta ClientMeta) error
	CurrentUser(userID string) (*model.UserModel, error)
}

// authService 认证服务实现
type authService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	audit  AuditLogService
}

// NewAuthService 创建认证服务
func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, audit AuditLogService) AuthService {
	return &authService{
		users:  users,
		tokens: tokens,
		audit:  audit,
	}
}

// Login 凭据登录
// 账号不存在和密码错误返回同一个错误,不泄露账号是否存在;
// 凭据永不写入日志
func (s *authService) Login(req *LoginRequest, meta ClientMeta) (*LoginResult, error) {
	user, err := s.users.FindActiveByEmail(req.Email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("invalid email or password: %w", workflow.ErrUnauthenticated)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logrus.WithField("user_id", user.ID).Warn("Failed login attempt")
		return nil, fmt.Errorf("invalid email or password: %w", workflow.ErrUnauthenticated)
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Position, user.FullName)
	if err != nil {
		return nil, err
	}

	user.LastLoginIP = meta.IP
	if err := s.users.Update(user); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("Failed to record last login IP")
	}

	if err := s.audit.RecordAction(user.ID, "login", "User", user.ID, user.Email, nil, meta); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("Failed to audit login")
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"position": user.Position,
	}).Info("User logged in")

	return &LoginResult{Token: token, User: user}, nil
}

// Logout 登出
// token 本身无状态,登出只留审计痕迹
func (s *authService) Logout(userID string, meta ClientMeta) error {
	if err := s.audit.RecordAction(userID, "logout", "User", userID, "", nil, meta); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("Failed to audit logout")
	}
	return nil
}

// CurrentUser 返回当前登录用户
func (s *authService) CurrentUser(userID string) (*model.UserModel, error) {
	user, err := s.users.FindActiveByID(userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("user %s: %w", userID, workflow.ErrUnauthenticated)
		}
		return nil, err
	}
	return user, nil
}
