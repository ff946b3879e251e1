package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role enumerates caller roles.
type Role string

const (
	RoleRequester Role = "REQUESTER"
	RolePMOps     Role = "PMOPS"
	RoleAdmin     Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleRequester || r == RolePMOps || r == RoleAdmin
}

// User is an entry in the admin-managed directory. EmployeeID is the stable
// actor identifier recorded in every audit entry.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EmployeeID   string             `bson:"employeeId" json:"employeeId"`
	Email        string             `bson:"email" json:"email"`
	DisplayName  string             `bson:"displayName" json:"displayName"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	Active       bool               `bson:"active" json:"active"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
