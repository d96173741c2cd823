// File: internal/user/adapter.go
package user

import (
	"time"

	"github.com/google/uuid"
)

// PublicUser is the only user shape that leaves the API. It has no password field.
type PublicUser struct {
	ID        uuid.UUID `json:"_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToPublic converts a stored user to its public view.
func ToPublic(u *User) *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// ToPublicWithAvatar is ToPublic with the avatar replaced, as returned by
// provider sign-in for an existing account.
func ToPublicWithAvatar(u *User, avatar string) *PublicUser {
	p := ToPublic(u)
	if p != nil && avatar != "" {
		p.Avatar = avatar
	}
	return p
}
