package model

import (
	"errors"
	"time"
)

// UserID is the opaque identifier of a user. Distinct types per entity keep
// a customer id from being passed where a user id is expected.
type UserID string

// Role is the closed set of access levels.
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleDeliveryAgent Role = "delivery_agent"
	RoleViewer        Role = "viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDeliveryAgent, RoleViewer:
		return true
	}
	return false
}

// User is an authenticated principal. The password exists only as a bcrypt
// hash and is never serialized. Username is immutable after creation; users
// are never updated or deleted through this service.
type User struct {
	ID           UserID    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// UserCreateRequest is the input for admin registration.
type UserCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
	Name     string `json:"name"`
}

func (p UserCreateRequest) Validate() error {
	if p.Username == "" {
		return errors.New("username is required")
	}
	if p.Password == "" {
		return errors.New("password is required")
	}
	if p.Name == "" {
		return errors.New("name is required")
	}
	if p.Role == "" {
		return errors.New("role is required")
	}
	return nil
}
