package dto

import (
	"regexp"
	"strings"

	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/pkg/util"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const minPasswordLength = 8

// RegisterRequest payload for self-registration.
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Normalize trims whitespace on all fields.
func (r *RegisterRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
	r.Password = strings.TrimSpace(r.Password)
}

// Validate reports field-level failures.
func (r *RegisterRequest) Validate() []util.FieldError {
	var fields []util.FieldError
	if r.FirstName == "" {
		fields = append(fields, util.FieldError{Path: "firstName", Message: "first name is required"})
	}
	if r.LastName == "" {
		fields = append(fields, util.FieldError{Path: "lastName", Message: "last name is required"})
	}
	fields = append(fields, validateEmail(r.Email)...)
	fields = append(fields, validatePassword(r.Password)...)
	return fields
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims whitespace on all fields.
func (r *LoginRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.Password = strings.TrimSpace(r.Password)
}

// Validate reports field-level failures.
func (r *LoginRequest) Validate() []util.FieldError {
	var fields []util.FieldError
	fields = append(fields, validateEmail(r.Email)...)
	if r.Password == "" {
		fields = append(fields, util.FieldError{Path: "password", Message: "password is required"})
	}
	return fields
}

// SessionResponse is the body returned by session-issuing endpoints; the
// tokens themselves travel as cookies.
type SessionResponse struct {
	ID int64 `json:"id"`
}

// UserResponse is a user profile with the password hash stripped.
type UserResponse struct {
	ID        int64       `json:"id"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	TenantID  *int64      `json:"tenantId,omitempty"`
}

// NewUserResponse maps a domain user onto the wire shape.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      user.Role,
		TenantID:  user.TenantID,
	}
}

func validateEmail(email string) []util.FieldError {
	if email == "" {
		return []util.FieldError{{Path: "email", Message: "email is required"}}
	}
	if !emailPattern.MatchString(email) {
		return []util.FieldError{{Path: "email", Message: "email should be a valid email"}}
	}
	return nil
}

func validatePassword(password string) []util.FieldError {
	if password == "" {
		return []util.FieldError{{Path: "password", Message: "password is required"}}
	}
	if len(password) < minPasswordLength {
		return []util.FieldError{{Path: "password", Message: "password should be at least 8 chars"}}
	}
	return nil
}
