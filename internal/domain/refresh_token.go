package domain

import "time"

// RefreshTokenRecord is one active refresh session. Its id is embedded in
// the refresh token as the jti claim, so record and token are created and
// deleted together.
type RefreshTokenRecord struct {
	ID        int64
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
