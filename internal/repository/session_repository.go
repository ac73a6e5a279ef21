// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"time"

	"gorm.io/gorm"

	"bebo-bot-go/internal/model"
)

// SessionRepository 接口定义了会话数据的持久化操作。
type SessionRepository interface {
	Create(session *model.ChatSession) error
	FindByID(id uint) (*model.ChatSession, error)
	FindByUser(userID uint) ([]model.ChatSession, error)
	End(id uint, endedAt time.Time) error
	DeleteWithMessages(id uint) error
	Count() (int64, error)
	CountDistinctUsers() (int64, error)
}

// sessionRepository 是 SessionRepository 接口的 GORM 实现。
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository 创建一个新的 SessionRepository 实例。
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// Create 在数据库中创建一个新的会话记录。
func (r *sessionRepository) Create(session *model.ChatSession) error {
	return r.db.Create(session).Error
}

// FindByID 根据会话 ID 查找一个会话。
func (r *sessionRepository) FindByID(id uint) (*model.ChatSession, error) {
	var session model.ChatSession
	err := r.db.First(&session, id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindByUser 按开始时间倒序返回一个用户的全部会话。
// 未知用户返回空列表而不是错误。
func (r *sessionRepository) FindByUser(userID uint) ([]model.ChatSession, error) {
	var sessions []model.ChatSession
	err := r.db.Where("user_id = ?", userID).Order("started_at DESC").Find(&sessions).Error
	return sessions, err
}

// End 设置会话的结束时间。会话不存在时返回 gorm.ErrRecordNotFound。
func (r *sessionRepository) End(id uint, endedAt time.Time) error {
	res := r.db.Model(&model.ChatSession{}).Where("id = ?", id).Update("ended_at", endedAt)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteWithMessages 在一个事务里先删会话的全部消息、再删会话本身。
// 任一步失败整体回滚；会话删除影响 0 行时返回 gorm.ErrRecordNotFound
// （消息可能早已不在，所以只看会话行）。
func (r *sessionRepository) DeleteWithMessages(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).Delete(&model.ChatMessage{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.ChatSession{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Count 返回会话总数。
func (r *sessionRepository) Count() (int64, error) {
	var total int64
	err := r.db.Model(&model.ChatSession{}).Count(&total).Error
	return total, err
}

// CountDistinctUsers 返回拥有至少一个会话的用户数。
func (r *sessionRepository) CountDistinctUsers() (int64, error) {
	var total int64
	err := r.db.Model(&model.ChatSession{}).Distinct("user_id").Count(&total).Error
	return total, err
}
