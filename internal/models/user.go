package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Roles a user can hold
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an account. Email is the login identity, username the public handle.
type User struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	Email             string    `json:"email" gorm:"size:254;uniqueIndex;not null"`
	Username          string    `json:"username" gorm:"size:150;uniqueIndex;not null"`
	Password          string    `json:"-"`
	IsVerified        bool      `json:"is_verified" gorm:"default:false"`
	IsActive          bool      `json:"is_active" gorm:"default:true"`
	IsStaff           bool      `json:"is_staff" gorm:"default:false"`
	Role              string    `json:"role" gorm:"size:10;default:'user'"`
	VerificationToken *string   `json:"-" gorm:"size:100;index"`
	ResetToken        *string   `json:"-" gorm:"size:100;index"`
	FirebaseUID       *string   `json:"-" gorm:"size:128;uniqueIndex"`
	DateJoined        time.Time `json:"date_joined" gorm:"autoCreateTime"`
	UpdatedAt         time.Time `json:"-"`

	Profile *Profile `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// UserCompact is the minimal user shape embedded in other payloads
type UserCompact struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// ToCompact returns the compact representation of the user
func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Username: u.Username}
}

// RegisterRequest defines the request body for creating a local account
type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email,max=254"`
	Username        string `json:"username" validate:"required,min=3,max=150"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
}

// LoginRequest defines the request body for email/password login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenRequest carries a single opaque token (verification, refresh, logout)
type TokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// RefreshRequest defines the request body for exchanging a refresh token
type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// PasswordResetRequest starts a password reset
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordResetConfirmRequest completes a password reset
type PasswordResetConfirmRequest struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}
