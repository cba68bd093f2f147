package domain

import "time"

// UserRole represents what a user is allowed to do on the platform.
type UserRole string

const (
	RoleClient   UserRole = "CLIENT"
	RoleOwner    UserRole = "OWNER"
	RoleDelivery UserRole = "DELIVERY"
)

// Valid reports whether the role is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleClient, RoleOwner, RoleDelivery:
		return true
	}
	return false
}

// User is the domain model for every account on the platform: clients who
// order, owners who run restaurants, and delivery riders.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         UserRole
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Verification holds a pending email-verification code for a user.
type Verification struct {
	ID        int64
	Code      string
	UserID    int64
	CreatedAt time.Time
}
