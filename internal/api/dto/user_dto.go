package dto

import "github.com/spec-kit/npdi-tracker/internal/domain"

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateUserRequest payload for the admin directory.
type CreateUserRequest struct {
	EmployeeID  string      `json:"employeeId"`
	Email       string      `json:"email"`
	DisplayName string      `json:"displayName"`
	Password    string      `json:"password"`
	Role        domain.Role `json:"role"`
}
