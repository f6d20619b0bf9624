package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleHR       UserRole = "HR"
	RoleManager  UserRole = "MANAGER"
	RoleEmployee UserRole = "EMPLOYEE"
)

// Privileged reports whether the role may act on other employees' records.
func (r UserRole) Privileged() bool {
	switch r {
	case RoleAdmin, RoleHR, RoleManager:
		return true
	default:
		return false
	}
}

// JWTClaims is the token payload issued by the identity service. The engine
// only consumes it; it never issues tokens.
type JWTClaims struct {
	UserID     string   `json:"user_id"`
	EmployeeID string   `json:"employee_id"`
	Role       UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
