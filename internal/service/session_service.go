package service

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"bebo-bot-go/internal/model"
	"bebo-bot-go/internal/repository"
	"bebo-bot-go/pkg/apperr"
)

// Stats 是全局统计结果，四个数各来自一条独立的只读查询。
type Stats struct {
	TotalSessions         int64   `json:"totalSessions"`
	TotalMessages         int64   `json:"totalMessages"`
	ActiveUsers           int64   `json:"activeUsers"`
	AvgMessagesPerSession float64 `json:"avgMessagesPerSession"`
}

// SessionService 定义了会话生命周期与用户查询的业务接口。
// 会话先创建，可选地结束，最终删除；结束不可逆，删除是物理删除。
type SessionService interface {
	ListSessions(userID uint) ([]model.ChatSession, error)
	CreateSession(userID uint, contextText, botModel *string) (*model.ChatSession, error)
	EndSession(id uint) error
	DeleteSession(id uint) error
	GetUser(id uint) (*model.User, error)
	GetStats() (*Stats, error)
}

type sessionService struct {
	sessionRepo repository.SessionRepository
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
}

// NewSessionService 创建一个新的 SessionService 实例。
func NewSessionService(sessionRepo repository.SessionRepository, messageRepo repository.MessageRepository, userRepo repository.UserRepository) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
	}
}

// ListSessions 返回用户的全部会话，未知用户得到空列表而不是错误。
func (s *sessionService) ListSessions(userID uint) ([]model.ChatSession, error) {
	sessions, err := s.sessionRepo.FindByUser(userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to list sessions", err)
	}
	return sessions, nil
}

// CreateSession 校验用户存在后插入一条新会话。
func (s *sessionService) CreateSession(userID uint, contextText, botModel *string) (*model.ChatSession, error) {
	exists, err := s.userRepo.Exists(userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to check user", err)
	}
	if !exists {
		return nil, apperr.New(apperr.CodeNotFound, fmt.Sprintf("user %d not found", userID))
	}

	session := &model.ChatSession{
		UserID:    userID,
		StartedAt: time.Now(),
		Context:   contextText,
		BotModel:  botModel,
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to create session", err)
	}
	return session, nil
}

// EndSession 设置会话结束时间。
func (s *sessionService) EndSession(id uint) error {
	err := s.sessionRepo.End(id, time.Now())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(apperr.CodeNotFound, fmt.Sprintf("session %d not found", id))
	}
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "failed to end session", err)
	}
	return nil
}

// DeleteSession 原子地删除会话及其全部消息。
func (s *sessionService) DeleteSession(id uint) error {
	err := s.sessionRepo.DeleteWithMessages(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(apperr.CodeNotFound, fmt.Sprintf("session %d not found", id))
	}
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "failed to delete session", err)
	}
	return nil
}

// GetUser 查询一个用户的展示信息。
func (s *sessionService) GetUser(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.CodeNotFound, fmt.Sprintf("user %d not found", id))
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to get user", err)
	}
	return user, nil
}

// GetStats 汇总全局统计。四条查询相互独立，接受近似一致。
func (s *sessionService) GetStats() (*Stats, error) {
	totalSessions, err := s.sessionRepo.Count()
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to count sessions", err)
	}
	totalMessages, err := s.messageRepo.Count()
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to count messages", err)
	}
	activeUsers, err := s.sessionRepo.CountDistinctUsers()
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to count active users", err)
	}

	stats := &Stats{
		TotalSessions: totalSessions,
		TotalMessages: totalMessages,
		ActiveUsers:   activeUsers,
	}
	if totalSessions > 0 {
		stats.AvgMessagesPerSession = float64(totalMessages) / float64(totalSessions)
	}
	return stats, nil
}
