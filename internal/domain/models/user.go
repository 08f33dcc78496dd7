package models

import "time"

// Role scopes what a user may see and do.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleAgronomist Role = "agronomist"
	RoleClient     Role = "client"
	RoleOperator   Role = "operator"
)

// User is an authenticated account stored in the users collection.
type User struct {
	ID           string    `bson:"_id" json:"uid"`
	Email        string    `bson:"email" json:"email" validate:"required,email"`
	Name         string    `bson:"name" json:"name"`
	Role         Role      `bson:"role" json:"role"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	Properties   []string  `bson:"properties,omitempty" json:"properties,omitempty"`
	Avatar       string    `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Phone        string    `bson:"phone,omitempty" json:"phone,omitempty"`
	LastLogin    time.Time `bson:"last_login,omitempty" json:"lastLogin,omitempty"`
}

// Session is the authenticated state handed to callers after sign-in.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"uid"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}
