package dto

import (
	"strings"

	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/pkg/util"
)

// CreateUserRequest payload for admin-created accounts.
type CreateUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	TenantID  *int64 `json:"tenantId"`
}

// Normalize trims whitespace on all fields.
func (r *CreateUserRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
	r.Password = strings.TrimSpace(r.Password)
	r.Role = strings.TrimSpace(r.Role)
}

// Validate reports field-level failures.
func (r *CreateUserRequest) Validate() []util.FieldError {
	var fields []util.FieldError
	if r.FirstName == "" {
		fields = append(fields, util.FieldError{Path: "firstName", Message: "first name is required"})
	}
	if r.LastName == "" {
		fields = append(fields, util.FieldError{Path: "lastName", Message: "last name is required"})
	}
	fields = append(fields, validateEmail(r.Email)...)
	fields = append(fields, validatePassword(r.Password)...)
	fields = append(fields, validateRole(r.Role)...)
	return fields
}

// UpdateUserRequest payload for profile/role updates. Email is immutable.
type UpdateUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	TenantID  *int64 `json:"tenantId"`
}

// Normalize trims whitespace on all fields.
func (r *UpdateUserRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Role = strings.TrimSpace(r.Role)
}

// Validate reports field-level failures.
func (r *UpdateUserRequest) Validate() []util.FieldError {
	var fields []util.FieldError
	if r.FirstName == "" {
		fields = append(fields, util.FieldError{Path: "firstName", Message: "first name is required"})
	}
	if r.LastName == "" {
		fields = append(fields, util.FieldError{Path: "lastName", Message: "last name is required"})
	}
	fields = append(fields, validateRole(r.Role)...)
	return fields
}

func validateRole(role string) []util.FieldError {
	if role == "" {
		return []util.FieldError{{Path: "role", Message: "role is required"}}
	}
	if !domain.Role(role).Valid() {
		return []util.FieldError{{Path: "role", Message: "unknown role"}}
	}
	return nil
}
