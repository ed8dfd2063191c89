package auth

import (
	"github.com/gudangmitra/gudang-backend/internal/users"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the self-service signup payload. New accounts always
// receive the user role.
type RegisterRequest struct {
	Name       string  `json:"name" validate:"required"`
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,min=8"`
	Department *string `json:"department,omitempty"`
}

// LoginResponse contains the access token and the authenticated user.
type LoginResponse struct {
	AccessToken string         `json:"accessToken"`
	TokenType   string         `json:"tokenType"`
	ExpiresIn   int            `json:"expiresIn"`
	User        *users.UserDTO `json:"user"`
}
