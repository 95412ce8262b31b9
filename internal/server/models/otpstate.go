package models

import "time"

// OtpState is the per-phone one-time-code record. It is created on the
// first issuance for a phone; re-issuance overwrites hash, expiry, and
// sent-at. Once the phone is verified the record is inert but not deleted.
type OtpState struct {
	Phone string

	// VerificationHash is base64(SHA-256(code || ":" || phone)); nil once
	// the code has been consumed.
	VerificationHash *string
	ExpiresAt        *time.Time
	SentAt           *time.Time

	Attempts    int
	LockedUntil *time.Time
}
