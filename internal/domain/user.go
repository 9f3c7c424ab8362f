package domain

import "time"

// User is the domain model for an account in a tenant.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         Role
	TenantID     *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
