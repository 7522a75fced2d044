package model

// ── 角色 ──

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// User 用户表 — 对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Email        string `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	FirstName    string `gorm:"type:varchar(100);not null"                     json:"first_name"`
	LastName     string `gorm:"type:varchar(100);not null"                     json:"last_name"`
	Role         string `gorm:"type:varchar(20);not null;default:'employee'"   json:"role"` // admin | employee
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// FullName 显示名（通知消息中使用）
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
