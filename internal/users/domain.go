package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/kindred-stories/kindred/internal/access"
)

// User represents a member account as seen by the admin panel.
type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	// UserRole is the legacy role mirrored from the auth service.
	UserRole string `json:"user_role"`
	// AdminRole is the explicitly assigned admin role, empty when unset.
	AdminRole string    `json:"admin_role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Principal returns the role inputs of u for access resolution.
func (u User) Principal() access.Principal {
	return access.Principal{
		UserID:       u.ID.String(),
		Email:        u.Email,
		LegacyRole:   u.UserRole,
		AssignedRole: u.AdminRole,
	}
}

// UserView pairs a user with the admin role it resolves to.
type UserView struct {
	User
	Effective access.Resolution `json:"effective"`
}

// AssignParams describes an admin role change.
type AssignParams struct {
	UserID   uuid.UUID
	ActorID  string
	Role     string
	Previous string
}
