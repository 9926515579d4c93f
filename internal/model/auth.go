package model

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthRequest types
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     Role   `json:"role"`
	Name     string `json:"name" binding:"required"`
}

type ChangePasswordRequest struct {
	Username    string
	NewPassword string
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Message string    `json:"message"`
	Token   string    `json:"token"`
	User    Principal `json:"user"`
}

// TokenClaims represents JWT claims
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID   uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Role     Role      `json:"role"`
	Name     string    `json:"name"`
}
