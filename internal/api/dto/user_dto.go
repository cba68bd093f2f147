package dto

import "github.com/spec-kit/eats-service/internal/domain"

// CreateAccountRequest payload for new accounts.
type CreateAccountRequest struct {
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     domain.UserRole `json:"role"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// EditProfileRequest payload for profile edits; nil fields stay unchanged.
type EditProfileRequest struct {
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// VerifyEmailRequest payload for email verification.
type VerifyEmailRequest struct {
	Code string `json:"code"`
}

// AuthResponse carries the identity token handed out at register/login.
type AuthResponse struct {
	Token string `json:"token"`
}

// UserResponse is the public shape of an account.
type UserResponse struct {
	ID       int64           `json:"id"`
	Email    string          `json:"email"`
	Role     domain.UserRole `json:"role"`
	Verified bool            `json:"verified"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Email:    user.Email,
		Role:     user.Role,
		Verified: user.Verified,
	}
}
