package events

import (
	"time"

	"github.com/spec-kit/auth-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventUserCreated    EventType = "user_created"
	EventSessionRotated EventType = "session_rotated"
	EventSessionRevoked EventType = "session_revoked"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    int64       `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// UserCreatedPayload payload for admin-created accounts.
type UserCreatedPayload struct {
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
	TenantID *int64      `json:"tenant_id,omitempty"`
}

// SessionRotatedPayload payload.
type SessionRotatedPayload struct {
	OldRecordID int64 `json:"old_record_id"`
	NewRecordID int64 `json:"new_record_id"`
}

// SessionRevokedPayload payload.
type SessionRevokedPayload struct {
	RecordID int64 `json:"record_id"`
}
