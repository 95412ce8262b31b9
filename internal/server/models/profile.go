package models

import "time"

// Profile is an FC's onboarding profile row. The resident-number columns
// here are display-safe projections only; the real number lives encrypted
// in the identity vault.
type Profile struct {
	ID            string
	Phone         string
	Name          string
	Affiliation   string
	Recommender   string
	Email         string
	Carrier       string
	Address       string
	AddressDetail string
	Status        string

	PhoneVerified   bool
	PhoneVerifiedAt *time.Time

	SignupCompleted   bool
	IdentityCompleted bool

	// ResidentIDMasked is "YYMMDD-G******": never round-trippable.
	ResidentIDMasked string
	// ResidentIDHash is the keyed lookup hash for duplicate detection.
	ResidentIDHash string

	CreatedAt time.Time
}

// SignupInfo carries the optional profile fields captured by the signup
// form; empty fields leave the stored value untouched.
type SignupInfo struct {
	Name        string
	Affiliation string
	Recommender string
	Email       string
	Carrier     string
}
