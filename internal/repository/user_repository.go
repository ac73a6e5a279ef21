package repository

import (
	"gorm.io/gorm"

	"bebo-bot-go/internal/model"
)

// UserRepository 接口定义了用户数据的查询操作。
// users 表由外部系统维护，这里只读，不提供任何写方法。
type UserRepository interface {
	FindByID(userID uint) (*model.User, error)
	Exists(userID uint) (bool, error)
}

// userRepository 是 UserRepository 接口的 GORM 实现。
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建一个新的 UserRepository 实例。
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// FindByID 根据用户 ID 从数据库中查找一个用户。
func (r *userRepository) FindByID(userID uint) (*model.User, error) {
	var user model.User
	err := r.db.First(&user, userID).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Exists 判断用户是否存在。
func (r *userRepository) Exists(userID uint) (bool, error) {
	var total int64
	err := r.db.Model(&model.User{}).Where("id = ?", userID).Count(&total).Error
	if err != nil {
		return false, err
	}
	return total > 0, nil
}
