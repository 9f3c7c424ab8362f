package domain

import "time"

// Tenant models an organization that owns users.
type Tenant struct {
	ID        int64
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
