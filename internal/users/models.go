package users

import (
	"time"

	"github.com/google/uuid"
)

// Role distinguishes self-service customers from counter agents and admins.
// Agents and admins issue tickets on behalf of walk-in passengers and bypass
// the sales cutoff.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAgent    Role = "AGENT"
	RoleAdmin    Role = "ADMIN"
)

func (r Role) String() string {
	return string(r)
}

// IsStaff reports whether the role sells tickets over the counter.
func (r Role) IsStaff() bool {
	return r == RoleAgent || r == RoleAdmin
}

type User struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	FirstName string    `json:"first_name" gorm:"not null"`
	LastName  string    `json:"last_name" gorm:"not null"`
	Phone     string    `json:"phone"`
	Role      Role      `json:"role" gorm:"type:varchar(20);not null;default:'CUSTOMER'"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func IsValidRole(role string) bool {
	switch role {
	case string(RoleCustomer), string(RoleAgent), string(RoleAdmin):
		return true
	default:
		return false
	}
}
