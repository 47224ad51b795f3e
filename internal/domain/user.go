package domain

import (
	"context"
	"time"
)

// User roles. Anything that is not RoleAdmin is treated as a normal user.
const (
	RoleAdmin  = "admin"
	RoleNormal = "normal"
)

type User struct {
	ID    int64
	Name  string
	Email string
	// PasswordHash is the bcrypt hash of the user's password. It never leaves
	// the repository/auth layer; handlers serialize users through UserSummary.
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user may perform mutating event operations.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserSummary is the wire representation of a user (no password hash).
type UserSummary struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type UserRepository interface {
	Create(ctx context.Context, name, email, passwordHash, role string) (*User, error)
	GetByID(ctx context.Context, userID int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// TokenVerifier validates a bearer credential and returns the associated user.
// Implementations return ErrInvalidToken for missing, malformed, or expired
// credentials and ErrUserNotFound when the token subject no longer exists.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*User, error)
}
