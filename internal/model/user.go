// Package model 包含了应用的数据模型定义。
package model

// User 对应外部系统维护的 users 表，本服务只读：
// 用于校验会话归属和渲染展示信息，绝不创建或修改。
type User struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"type:varchar(100)" json:"name"`
	Email  string `gorm:"type:varchar(255)" json:"email"`
	Avatar string `gorm:"type:varchar(500)" json:"avatar"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (User) TableName() string {
	return "users"
}
