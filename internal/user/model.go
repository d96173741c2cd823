// File: internal/user/model.go
package user

import (
	"estate_backend/internal/common"
)

// User represents the user model in the database.
type User struct {
	common.BaseModel
	Username string `gorm:"type:varchar(100);not null;uniqueIndex" json:"username"`
	Email    string `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Password string `gorm:"column:password;type:varchar(255);not null" json:"-"`
	Avatar   string `gorm:"type:text" json:"avatar"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,max=72"`
}

// UpdateUserRequest is the body of POST /user/update/:id. Absent or empty
// fields are left unchanged.
type UpdateUserRequest struct {
	Username *string `json:"username" binding:"omitempty,max=100"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,max=72"`
	Avatar   *string `json:"avatar"`
}

// Patch is a partial user update. Password, when set, is already hashed.
type Patch struct {
	Username     *string
	Email        *string
	PasswordHash *string
	Avatar       *string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Username == nil && p.Email == nil && p.PasswordHash == nil && p.Avatar == nil
}

func (p Patch) columns() map[string]interface{} {
	m := make(map[string]interface{})
	if p.Username != nil {
		m["username"] = *p.Username
	}
	if p.Email != nil {
		m["email"] = *p.Email
	}
	if p.PasswordHash != nil {
		m["password"] = *p.PasswordHash
	}
	if p.Avatar != nil {
		m["avatar"] = *p.Avatar
	}
	return m
}
