package auth

import "github.com/spec-kit/npdi-tracker/internal/domain"

// Identity is the authenticated caller, resolved once by the middleware and
// threaded explicitly through every core operation. StableID is the employee
// id recorded in audit entries.
type Identity struct {
	StableID    string
	DisplayName string
	Role        domain.Role
}
