package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/tradedeskhq/tradedesk-backend/pkg/db/models"
)

// UserDTO is the user payload returned to clients. Password material
// never leaves the service.
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Active      bool       `json:"active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// UserListResult is a cursor page of users.
type UserListResult struct {
	Users      []UserDTO `json:"users"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// LoginResult carries the token pair handed out after authentication.
type LoginResult struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	User         UserDTO `json:"user"`
}

// RefreshResult carries the rotated token pair.
type RefreshResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// CreatedUserResult includes the one-time temporary password when the
// manager did not choose one.
type CreatedUserResult struct {
	User         UserDTO `json:"user"`
	TempPassword string  `json:"temp_password,omitempty"`
}

func toUserDTO(m *models.User) *UserDTO {
	if m == nil {
		return nil
	}
	return &UserDTO{
		ID:          m.ID,
		Name:        m.Name,
		Email:       m.Email,
		Role:        m.Role.String(),
		Active:      m.Active,
		LastLoginAt: m.LastLoginAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
