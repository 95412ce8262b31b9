package models

import "time"

// Credential is the password material and lockout state for one principal
// of any kind (admin, manager, fc). Hash and salt are stored base64-encoded.
//
// Invariants:
//   - FailedCount is always in [0, MaxFails): reaching the threshold locks
//     the record and resets the counter in the same update.
//   - A successful verification clears FailedCount and LockedUntil.
type Credential struct {
	PrincipalID  string
	PasswordHash string
	PasswordSalt string

	// PasswordSetAt nil means the principal has not completed signup yet.
	PasswordSetAt *time.Time

	FailedCount int
	LockedUntil *time.Time

	ResetTokenHash      *string
	ResetTokenExpiresAt *time.Time
	ResetTokenSentAt    *time.Time
}
