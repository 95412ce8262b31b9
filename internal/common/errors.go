// Package common contains shared sentinel errors and small utilities used
// across the credential service. Callers should use errors.Is to match the
// sentinel values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Credential lifecycle errors.
	ErrNeedsPasswordSetup = errors.New("password not set")
	ErrPasswordAlreadySet = errors.New("password already set")
	ErrPhoneNotVerified   = errors.New("phone not verified")
	ErrPrincipalInactive  = errors.New("principal inactive")

	// OTP lifecycle errors.
	ErrCooldown    = errors.New("issuance cooldown active")
	ErrCodeExpired = errors.New("code expired")
	ErrNoCode      = errors.New("no pending code")

	// SMS delivery errors.
	ErrSMSSendFailed = errors.New("sms send failed")
)
