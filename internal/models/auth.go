package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the available application roles for RBAC.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleTeacher UserRole = "TEACHER"
)

// JWTClaims mirrors the payload of a Supabase access token. The application
// role lives in app_metadata; the top-level role is Supabase's own
// ("authenticated").
type JWTClaims struct {
	Email       string      `json:"email"`
	Role        string      `json:"role"`
	AppMetadata AppMetadata `json:"app_metadata"`
	jwt.RegisteredClaims
}

// AppMetadata holds server-controlled user attributes.
type AppMetadata struct {
	Role UserRole `json:"role"`
}

// UserID returns the Supabase user id.
func (c *JWTClaims) UserID() string {
	if c == nil {
		return ""
	}
	return c.Subject
}

// AppRole returns the application role carried by the token.
func (c *JWTClaims) AppRole() UserRole {
	if c == nil {
		return ""
	}
	return c.AppMetadata.Role
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
