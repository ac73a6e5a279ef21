package service

import (
	"errors"

	"bebo-bot-go/internal/config"
	"bebo-bot-go/pkg/hash"
	"bebo-bot-go/pkg/token"
)

// ErrInvalidCredentials 表示用户名或密码不正确。
var ErrInvalidCredentials = errors.New("invalid username or password")

// adminRole 是后台管理 token 携带的角色。
const adminRole = "admin"

// AuthService 定义了后台登录认证的业务接口。
// 管理员账号保存在配置里（密码为 bcrypt 哈希），与聊天用户表无关。
type AuthService interface {
	Login(username, password string) (accessToken, refreshToken string, err error)
	Refresh(refreshToken string) (accessToken, newRefreshToken string, err error)
}

type authService struct {
	adminCfg   config.AdminConfig
	jwtManager *token.JWTManager
}

// NewAuthService 创建一个新的 AuthService 实例。
func NewAuthService(adminCfg config.AdminConfig, jwtManager *token.JWTManager) AuthService {
	return &authService{
		adminCfg:   adminCfg,
		jwtManager: jwtManager,
	}
}

// Login 校验配置中的管理员账号并签发一对 token。
func (s *authService) Login(username, password string) (string, string, error) {
	if username != s.adminCfg.Username || !hash.CheckPassword(password, s.adminCfg.PasswordHash) {
		return "", "", ErrInvalidCredentials
	}

	accessToken, err := s.jwtManager.GenerateToken(username, adminRole)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(username, adminRole)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// Refresh 验证 refresh token 并轮换出新的一对 token。
func (s *authService) Refresh(refreshToken string) (string, string, error) {
	claims, err := s.jwtManager.VerifyToken(refreshToken)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}

	accessToken, err := s.jwtManager.GenerateToken(claims.Username, claims.Role)
	if err != nil {
		return "", "", err
	}
	newRefreshToken, err := s.jwtManager.GenerateRefreshToken(claims.Username, claims.Role)
	if err != nil {
		return "", "", err
	}
	return accessToken, newRefreshToken, nil
}
